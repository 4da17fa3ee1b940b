package exitcodes

// Exit codes for the keysweep tools
// These codes form the operational contract with CI/CD and operators
const (
	Success         = 0 // Successful execution (including sweeps with per-file failures)
	InvalidConfig   = 2 // Configuration file invalid
	SafetyViolation = 3 // Safety validator blocked an operation
	RuntimeError    = 4 // Runtime error during execution (invalid root, database failure)
)
