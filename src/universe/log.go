package universe

import "log"

//Logf is the package diagnostic logger, replaced by SetLogger
var Logf func(format string, v ...interface{}) = log.Printf

//SetLogger replaces the package logger, nil mutes it
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
