package estimator

const joulesPerKWh = 3_600_000

// JoulesToKWh converts joules to kilowatt-hours.
func JoulesToKWh(j float64) float64 { return j / joulesPerKWh }

// KWhToJoules converts kilowatt-hours to joules.
func KWhToJoules(kwh float64) float64 { return kwh * joulesPerKWh }

// EnergyCost prices an amount of energy at a tariff per kWh.
func EnergyCost(joules, pricePerKWh float64) float64 {
	return JoulesToKWh(joules) * pricePerKWh
}
