package logging

import (
	"log"
	"os"
)

var (
	InfoLog = log.New(os.Stdout, "INFO: ", log.LstdFlags|log.Lshortfile)
	WarnLog = log.New(os.Stdout, "WARN: ", log.LstdFlags|log.Lshortfile)
	ErrLog  = log.New(os.Stderr, "ERR:  ", log.LstdFlags|log.Lshortfile)
)
