package scene

// Burst emits between Minimum and Maximum extra particles once the system
// has been alive for Time seconds.
type Burst struct {
	Time    float64 `yaml:"time"`
	Minimum float64 `yaml:"minimum"`
	Maximum float64 `yaml:"maximum"`
}
