package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose   = "verbose"
	FlagConfig    = "config"
	FlagLogFile   = "log-file"
	FlagTraceFile = "trace-file"

	// Training flags (trainer and sim)
	FlagKind     = "kind"
	FlagMode     = "mode"
	FlagHitCount = "hit-count"
	FlagDuration = "duration"
	FlagStayTime = "stay-time"

	// Sim command flags
	FlagRealtime   = "realtime"
	FlagSeed       = "seed"
	FlagAccuracy   = "accuracy"
	FlagReactionMs = "reaction-ms"
	FlagJitterMs   = "jitter-ms"

	// Output format flags
	FlagJSON = "json"

	// Config init flags
	FlagForce  = "force"
	FlagGlobal = "global"
)
