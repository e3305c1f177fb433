// Command rtpreplay replays a scripted sequence of RTP and RTCP packets
// over UDP, reproducing wire format and inter-packet timing. See spec §6
// for the CLI surface.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/arzzra/rtpreplay/internal/playout"
	"github.com/arzzra/rtpreplay/internal/script"
	"github.com/arzzra/rtpreplay/internal/sink"
	"github.com/arzzra/rtpreplay/internal/telemetry"
)

func main() {
	var (
		file        = flag.String("f", "", "script file (else stdin)")
		loop        = flag.Bool("l", false, "loop mode (requires -f)")
		sourcePort  = flag.String("s", "", "lock source port pair")
		routerAlert = flag.Bool("a", false, "enable IP router-alert option")
		verbose     = flag.Bool("v", false, "verbose")
		metricsAddr = flag.String("metrics", "", "Prometheus exporter address (e.g. :9090); empty disables it")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-alv] [-f file] [-s port] host/port[/ttl]\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	host, port, ttl, err := parseDestination(flag.Arg(0))
	if err != nil {
		log.Printf("invalid destination %q: %v", flag.Arg(0), err)
		flag.Usage()
		os.Exit(1)
	}

	if *loop && *file == "" {
		log.Print("loop mode (-l) requires -f")
		os.Exit(1)
	}

	var srcPort int
	if *sourcePort != "" {
		srcPort, err = strconv.Atoi(*sourcePort)
		if err != nil {
			log.Printf("invalid -s port %q: %v", *sourcePort, err)
			os.Exit(1)
		}
	}

	tel := telemetry.New(telemetry.Config{Verbose: *verbose, MetricsAddr: *metricsAddr})
	if *metricsAddr != "" {
		srv := tel.ServeMetrics(*metricsAddr)
		defer srv.Close()
	}

	pair, err := sink.New(sink.Config{
		Host:        host,
		Port:        port,
		TTL:         ttl,
		SourcePort:  srcPort,
		RouterAlert: *routerAlert,
	})
	if err != nil {
		log.Printf("startup: %v", err)
		os.Exit(1)
	}
	defer pair.Close()

	lines, err := openSource(*file, *loop)
	if err != nil {
		log.Printf("startup: %v", err)
		os.Exit(1)
	}

	sched := playout.New(lines, pair, playout.StdTimer{}, *loop, tel.Logger)
	sched.Telemetry = tel

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(done)
	}()

	if err := sched.Run(done); err != nil {
		var syntaxErr *script.SyntaxError
		if errors.As(err, &syntaxErr) {
			fmt.Fprintf(os.Stderr, "Invalid script line %d: %s: %v\n", syntaxErr.Line, syntaxErr.Text, syntaxErr.Err)
			os.Exit(2)
		}
		log.Printf("playout: %v", err)
		os.Exit(1)
	}
}

// openSource opens the script file (or stdin) and wraps it in the
// LineSource implementation loop mode needs for rewind support.
func openSource(path string, loop bool) (playout.LineSource, error) {
	if path == "" {
		if loop {
			return nil, fmt.Errorf("loop mode requires a seekable script file (-f)")
		}
		return script.NewStreamSource(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script %s: %w", path, err)
	}
	return script.NewFileSource(f), nil
}

// parseDestination parses the positional host/port[/ttl] argument.
func parseDestination(arg string) (host string, port int, ttl int, err error) {
	parts := strings.Split(arg, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, 0, fmt.Errorf("expected host/port[/ttl]")
	}
	host = parts[0]
	port, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid port %q: %w", parts[1], err)
	}
	if len(parts) == 3 {
		ttl, err = strconv.Atoi(parts[2])
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid ttl %q: %w", parts[2], err)
		}
	}
	return host, port, ttl, nil
}
