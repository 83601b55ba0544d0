package scenario

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maxmuv/dos/sim/timing"
)

var errMalformed = errors.New("malformed directive")

// Parser reads directive scripts and applies them to a Target, one line at a
// time. Empty lines and lines starting with ";" are skipped. Directives that
// cannot be understood are logged and ignored.
type Parser struct {
	target     Target
	logger     *log.Logger
	timeUnit   time.Duration
	bidirected bool
}

// NewParser creates a parser for the target. Links are bidirectional until a
// "bidirected 0" directive is met, and a time unit is one second.
func NewParser(target Target) *Parser {
	return &Parser{
		target:     target,
		logger:     log.Default(),
		timeUnit:   time.Second,
		bidirected: true,
	}
}

// WithTimeUnit sets the real time that one unit of "wait" and
// "launch timer" stands for.
func (p *Parser) WithTimeUnit(d time.Duration) *Parser {
	p.timeUnit = d
	return p
}

// WithLogger sets where unknown directives are reported.
func (p *Parser) WithLogger(l *log.Logger) *Parser {
	p.logger = l
	return p
}

// ParseFile applies the script in the file.
func (p *Parser) ParseFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()

	return p.Parse(ctx, f)
}

// Parse applies the script read from r. It returns early with the context
// error if the context is cancelled during a wait.
func (p *Parser) Parse(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		err := p.apply(ctx, strings.Fields(line))

		switch {
		case err == nil:
		case errors.Is(err, errMalformed):
			p.logger.Printf("unknown directive in input file: '%s'", line)
		case ctx.Err() != nil:
			return err
		default:
			p.logger.Printf("line %d: %s: %v", lineNo, line, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading scenario: %w", err)
	}

	return nil
}

func (p *Parser) apply(ctx context.Context, f []string) error {
	switch f[0] {
	case "bidirected":
		return p.parseBidirected(f)
	case "errorRate":
		return p.parseErrorRate(f)
	case "processes":
		return p.parseProcesses(f)
	case "link":
		return p.parseLink(f)
	case "setprocesses":
		return p.parseSetProcesses(f)
	case "send":
		return p.parseSend(f)
	case "wait":
		return p.parseWait(ctx, f)
	case "launch":
		return p.parseLaunchTimer(f)
	}

	return errMalformed
}

func (p *Parser) parseBidirected(f []string) error {
	if len(f) != 2 {
		return errMalformed
	}

	v, err := strconv.Atoi(f[1])
	if err != nil {
		return errMalformed
	}

	p.bidirected = v != 0

	return nil
}

func (p *Parser) parseErrorRate(f []string) error {
	if len(f) != 2 {
		return errMalformed
	}

	r, err := strconv.ParseFloat(f[1], 64)
	if err != nil || r < 0 || r > 1 {
		return errMalformed
	}

	p.target.SetErrorRate(r)

	return nil
}

func (p *Parser) parseProcesses(f []string) error {
	if len(f) != 3 {
		return errMalformed
	}

	first, last, err := parseRange(f[1], f[2])
	if err != nil {
		return err
	}

	return p.target.CreateProcesses(first, last)
}

// link from <a|all> to <b|all> [latency <n>]
func (p *Parser) parseLink(f []string) error {
	if (len(f) != 5 && len(f) != 7) || f[1] != "from" || f[3] != "to" {
		return errMalformed
	}

	from, err := parseEndpoint(f[2])
	if err != nil {
		return err
	}

	to, err := parseEndpoint(f[4])
	if err != nil {
		return err
	}

	latency := DefaultLatency
	if len(f) == 7 {
		if f[5] != "latency" {
			return errMalformed
		}

		latency, err = strconv.Atoi(f[6])
		if err != nil || latency < 0 {
			return errMalformed
		}
	}

	link(p.target, from, to, p.bidirected, timing.VTimeInTick(latency))

	return nil
}

func (p *Parser) parseSetProcesses(f []string) error {
	if len(f) != 4 {
		return errMalformed
	}

	first, last, err := parseRange(f[1], f[2])
	if err != nil {
		return err
	}

	var errs []error
	for node := first; node <= last; node++ {
		if err := p.target.AssignModule(node, f[3]); err != nil {
			errs = append(errs, fmt.Errorf("process %d: %w", node, err))
		}
	}

	return errors.Join(errs...)
}

// send from <a> to <b> <text> [intArg]
func (p *Parser) parseSend(f []string) error {
	if (len(f) != 6 && len(f) != 7) || f[1] != "from" || f[3] != "to" {
		return errMalformed
	}

	from, err := strconv.Atoi(f[2])
	if err != nil {
		return errMalformed
	}

	to, err := strconv.Atoi(f[4])
	if err != nil {
		return errMalformed
	}

	var arg *int
	if len(f) == 7 {
		v, err := strconv.Atoi(f[6])
		if err != nil {
			return errMalformed
		}

		arg = &v
	}

	return p.target.Send(from, to, textMessage(f[5], arg))
}

func (p *Parser) parseWait(ctx context.Context, f []string) error {
	if len(f) != 2 {
		return errMalformed
	}

	n, err := strconv.Atoi(f[1])
	if err != nil || n < 0 {
		return errMalformed
	}

	return sleep(ctx, time.Duration(n)*p.timeUnit)
}

func (p *Parser) parseLaunchTimer(f []string) error {
	if len(f) != 3 || f[1] != "timer" {
		return errMalformed
	}

	n, err := strconv.Atoi(f[2])
	if err != nil || n <= 0 {
		return errMalformed
	}

	p.target.LaunchTimer(time.Duration(n) * p.timeUnit)

	return nil
}

func parseRange(a, b string) (first, last int, err error) {
	first, err = strconv.Atoi(a)
	if err != nil || first < 0 {
		return 0, 0, errMalformed
	}

	last, err = strconv.Atoi(b)
	if err != nil {
		return 0, 0, errMalformed
	}

	return first, last, nil
}

func parseEndpoint(s string) (int, error) {
	if s == "all" {
		return all, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errMalformed
	}

	return n, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
