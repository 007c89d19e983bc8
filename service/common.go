package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"postboard/internal/config"
	"postboard/internal/logging"

	"github.com/sirupsen/logrus"
)

// Process streams and the config source, replaceable in tests. A nil
// stream means the current os.Stdout, os.Stdin or os.Stderr.
var (
	stdout    io.Writer
	stdin     io.Reader
	logOutput io.Writer

	loadConfig = func() (config.Config, error) { return config.Load() }
)

func printf(format string, args ...interface{}) {
	var w io.Writer = os.Stdout
	if stdout != nil {
		w = stdout
	}
	fmt.Fprintf(w, format, args...)
}

// confirm asks a yes/no question on stdout and reads the answer from stdin.
func confirm(question string) bool {
	printf("%s [y/N] ", question)
	var r io.Reader = os.Stdin
	if stdin != nil {
		r = stdin
	}
	answer, _ := bufio.NewReader(r).ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}

func newLogger(cfg config.Config) (*logrus.Logger, error) {
	var w io.Writer = os.Stderr
	if logOutput != nil {
		w = logOutput
	}
	return logging.New(cfg.Log.Level, cfg.Log.Format, w)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
