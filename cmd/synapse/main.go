// Package main provides the synapse CLI: train networks from YAML job files
// and run or sample saved snapshots.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const version = "v0.1.0-dev"

const usage = `Synapse - neural network training for Go
Version: %s

Commands:
  version                                  Show version
  train    -config job.yaml [-v]           Train a network and save its snapshot
  run      -model m.snp -input 0,1         Run a network (LSTM steps separated by ';')
  generate -model m.snp -prompt text       Sample text or roll out a sequence from an LSTM
`

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, log *logrus.Logger) error {
	if len(args) == 0 {
		_, err := fmt.Fprintf(stdout, usage, version)
		return err
	}

	switch args[0] {
	case "version":
		_, err := fmt.Fprintf(stdout, "Synapse %s\n", version)
		return err
	case "train":
		return trainCmd(args[1:], stdout, log)
	case "run":
		return runCmd(args[1:], stdout)
	case "generate":
		return generateCmd(args[1:], stdout)
	case "help", "-h", "--help":
		_, err := fmt.Fprintf(stdout, usage, version)
		return err
	default:
		return errors.Errorf("unknown command %q", args[0])
	}
}
