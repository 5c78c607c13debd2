package config

// AnalysisConfig represents the vocabulary and pattern sets used by
// feature extraction and the heuristic rules
type AnalysisConfig struct {
	Vocabulary           []string
	SubjectVocabulary    []string
	SuspiciousTLDs       []string
	AttachmentExtensions []string
}

// VerdictConfig represents the verdict score cutoffs
type VerdictConfig struct {
	MaliciousThreshold  int
	SuspiciousThreshold int
}

// ModelConfig represents the classifier artifact configuration
type ModelConfig struct {
	Path     string
	MetaPath string
}

// ReputationConfig represents the static IP reputation configuration
type ReputationConfig struct {
	FlaggedIPs []string
}

// ServerConfig represents the SMTP filter server configuration
type ServerConfig struct {
	FilterType     string
	ListenAddress  string
	BlockMalicious bool
	VerdictHeader  string
	ScoreHeader    string
	ReasonHeader   string
	PostfixAddress string
	PostfixPort    int
	PostfixEnabled bool
	SubjectPrefix  string
	ModifySubject  bool
}

// GetAnalysis returns the analysis configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Vocabulary:           c.GetStringSlice("analysis.vocabulary"),
		SubjectVocabulary:    c.GetStringSlice("analysis.subject_vocabulary"),
		SuspiciousTLDs:       c.GetStringSlice("analysis.suspicious_tlds"),
		AttachmentExtensions: c.GetStringSlice("analysis.attachment_extensions"),
	}
}

// GetVerdict returns the verdict configuration
func (c *Config) GetVerdict() VerdictConfig {
	return VerdictConfig{
		MaliciousThreshold:  c.GetInt("verdict.malicious_threshold"),
		SuspiciousThreshold: c.GetInt("verdict.suspicious_threshold"),
	}
}

// GetModel returns the model configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Path:     c.GetString("model.path"),
		MetaPath: c.GetString("model.meta_path"),
	}
}

// GetReputation returns the reputation configuration
func (c *Config) GetReputation() ReputationConfig {
	return ReputationConfig{
		FlaggedIPs: c.GetStringSlice("reputation.flagged_ips"),
	}
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:     c.GetString("server.filter_type"),
		ListenAddress:  c.GetString("server.listen_address"),
		BlockMalicious: c.GetBool("server.block_malicious"),
		VerdictHeader:  c.GetString("server.headers.verdict"),
		ScoreHeader:    c.GetString("server.headers.score"),
		ReasonHeader:   c.GetString("server.headers.reason"),
		PostfixAddress: c.GetString("server.postfix.address"),
		PostfixPort:    c.GetInt("server.postfix.port"),
		PostfixEnabled: c.GetBool("server.postfix.enabled"),
		SubjectPrefix:  c.GetString("server.subject_prefix"),
		ModifySubject:  c.GetBool("server.modify_subject"),
	}
}
