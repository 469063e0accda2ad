// Package estimator implements the parametric cost model: the estimated
// completion time (ECT) and estimated energy consumption (EEC) of a job on a
// candidate resource.
//
// ECT is transfer time plus computation time:
//
//	compute  = instructions / (mips * 1e6) * (1 + load/100) * time_factor
//	transfer = data / (bandwidth * (1 - netload/100)) * (1 + src/200 + dst/200)
//
// EEC splits ECT by the job's data ratio and prices each part:
//
//	ratio    = data / (data + instructions)
//	transfer = network_power * ECT * ratio
//	compute  = base_power * ECT * (1 - ratio) * energy_factor * (1 + load/50)
//
// The estimator is stateless. It never mutates its inputs.
package estimator
