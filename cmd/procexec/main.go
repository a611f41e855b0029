// Command procexec loads one executable image and prints the resulting run set.
//
//	procexec -config config.yaml -cwd file:///tmp 'mem://localhost/bin/app a b "c d"'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/viant/procexec"
	"github.com/viant/procexec/service/cmdline"
)

func main() {
	configURL := flag.String("config", "", "YAML configuration URL")
	cwd := flag.String("cwd", "file:///", "working directory of the new process")
	snapshotURL := flag.String("snapshot", "", "snapshot store URL; empty keeps snapshots in memory")
	debug := flag.Bool("debug", false, "log why an image was rejected")
	traceFile := flag.String("trace", "", "write spans to file; '-' writes them to stdout")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: procexec [flags] 'image-url [args...]'")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := run(context.Background(), *configURL, *cwd, *snapshotURL, *debug, *traceFile, strings.Join(flag.Args(), " ")); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, configURL, cwd, snapshotURL string, debug bool, traceFile, line string) error {
	command, err := cmdline.Parse(line)
	if err != nil {
		return err
	}
	config := procexec.DefaultConfig()
	if configURL != "" {
		if config, err = procexec.LoadConfig(ctx, configURL); err != nil {
			return err
		}
	}
	if snapshotURL != "" {
		config.SnapshotURL = snapshotURL
	}
	options := []procexec.Option{procexec.WithDebug(debug || config.Loader.Debug)}
	switch traceFile {
	case "":
	case "-":
		options = append(options, procexec.WithTracing("procexec", "", ""))
	default:
		options = append(options, procexec.WithTracing("procexec", "", traceFile))
	}
	srv, err := procexec.NewFromConfig(config, options...)
	if err != nil {
		return err
	}
	srv.Execute(ctx, command.Path, cwd, command.Args)
	if len(srv.Contexts()) == 0 {
		return fmt.Errorf("%v: no process created", command.Path)
	}
	records, err := srv.Snapshot(ctx)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}
