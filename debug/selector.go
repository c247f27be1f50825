package debug

type Tselector string

// ALWAYS
const (
	ALWAYS Tselector = "ALWAYS"
	NEVER            = "NEVER"
)

// ERR
const (
	ERR Tselector = "_ERR"
)

// Read path
const (
	READSRV     Tselector = "READSRV"
	READSRV_ERR           = READSRV + ERR
	DESC                  = "DESC"
	MEM                   = "MEM"
	SCHED                 = "SCHED"
	MEMFS                 = "MEMFS"
	STAT                  = "STAT"
)

// Tests
const (
	TEST Tselector = "TEST"
)
