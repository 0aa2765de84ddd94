package config

// OrganizerConfig represents the configuration for the organize pipeline
type OrganizerConfig struct {
	MimeExpectations map[string]string
}

// SecurityConfig represents the configuration for threat scanning
type SecurityConfig struct {
	Enabled      bool
	Engine       string
	ClamdAddress string
	ClamscanPath string
	ScanTimeout  string
}

// QuarantineConfig represents the configuration for the quarantine store
type QuarantineConfig struct {
	Dir string
}

// CacheConfig represents the configuration for the verdict cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              string
	CleanupFrequency string
	SQLitePath       string
	MySQLDSN         string
}

// NotifyConfig represents the configuration for email notifications
type NotifyConfig struct {
	Enabled  bool
	SMTPHost string
	SMTPPort int
	StartTLS bool
	Username string
	Password string
	From     string
	To       string
}

// GetOrganizer returns the organizer configuration
func (c *Config) GetOrganizer() OrganizerConfig {
	return OrganizerConfig{
		MimeExpectations: c.GetStringMapString("organizer.mime_expectations"),
	}
}

// GetSecurity returns the security scan configuration
func (c *Config) GetSecurity() SecurityConfig {
	return SecurityConfig{
		Enabled:      c.GetBool("security.enabled"),
		Engine:       c.GetString("security.engine"),
		ClamdAddress: c.GetString("security.clamd_address"),
		ClamscanPath: c.GetString("security.clamscan_path"),
		ScanTimeout:  c.GetString("security.scan_timeout"),
	}
}

// GetQuarantine returns the quarantine configuration
func (c *Config) GetQuarantine() QuarantineConfig {
	return QuarantineConfig{
		Dir: c.GetString("quarantine.dir"),
	}
}

// GetCache returns the verdict cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              c.GetString("cache.ttl"),
		CleanupFrequency: c.GetString("cache.cleanup_frequency"),
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}
}

// GetNotify returns the notification configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		Enabled:  c.GetBool("notify.enabled"),
		SMTPHost: c.GetString("notify.smtp_host"),
		SMTPPort: c.GetInt("notify.smtp_port"),
		StartTLS: c.GetBool("notify.starttls"),
		Username: c.GetString("notify.username"),
		Password: c.GetString("notify.password"),
		From:     c.GetString("notify.from"),
		To:       c.GetString("notify.to"),
	}
}
