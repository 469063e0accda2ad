// Package config defines the format-agnostic planning configuration and the
// Loader interface that concrete formats implement.
//
// The `config.Model` carries job-type cost profiles, the resource catalog,
// network parameters, calibration factors and scheduler settings. Concrete
// loaders, such as the HCL one, live in separate packages.
package config
