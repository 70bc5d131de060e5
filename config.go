package feeledger

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		ConnectionString string `yaml:"conn_str"`
	} `yaml:"database"`
	Fees struct {
		// Timezone is the IANA zone in which the Friday waiver and the
		// monthly window are evaluated, e.g. "Asia/Manila".
		Timezone string `yaml:"timezone"`
	} `yaml:"fees"`
	Limits struct {
		AcquireTimeoutMS int64 `yaml:"acquire_timeout_ms"`
		Deposit          int64 `yaml:"deposit"`
		Withdraw         int64 `yaml:"withdraw"`
		History          int64 `yaml:"history"`
		Statement        int64 `yaml:"statement"`
	} `yaml:"limits"`
	Seed []SeedAccount `yaml:"seed_accounts"`
}

// SeedAccount is a demo account provisioned by the seeder binary. Account
// creation is otherwise outside this service.
type SeedAccount struct {
	ID      string `yaml:"id"`
	Email   string `yaml:"email"`
	Type    string `yaml:"acct_type"`
	Balance string `yaml:"balance"`
}
