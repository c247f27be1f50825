package debug

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

//
// Debug output is controlled by the KREADDEBUG environment variable,
// which can be a list of labels (e.g., "READSRV;SCHED").
//

var name string
var labels map[string]bool

func init() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	name = filepath.Base(os.Args[0])
	labels = make(map[string]bool)
	s := os.Getenv("KREADDEBUG")
	if s == "" {
		return
	}
	for _, l := range strings.Split(s, ";") {
		labels[l] = true
	}
}

func DPrintf(label Tselector, format string, v ...interface{}) {
	if _, ok := labels[string(label)]; ok || label == ALWAYS {
		log.Printf("%v %v %v", name, label, fmt.Sprintf(format, v...))
	}
}

func DFatalf(format string, v ...interface{}) {
	// Get info for the caller.
	pc, file, line, ok := runtime.Caller(1)
	fnDetails := runtime.FuncForPC(pc)
	if ok && fnDetails != nil {
		log.Fatalf("FATAL %v %v %v:%v %v", name, fnDetails.Name(), file, line, fmt.Sprintf(format, v...))
	} else {
		log.Fatalf("FATAL %v (missing details) %v", name, fmt.Sprintf(format, v...))
	}
}
