package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	Language  string
	Provider  string
	Model     string
	OutputDir string
	StoreDir  string
	NoHistory bool
	SessionID string
	Estimate  bool
	Quiet     bool

	// Throughput flags
	Tier       int
	Parallel   int
	CharBudget int
	SplitBytes int

	// Test mode flags
	TestMode  bool
	TestLines int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Provider:  "deepseek",
		OutputDir: ".",
		Tier:      1,
		TestLines: 10,
	}
}
