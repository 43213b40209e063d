package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"healthdash/apiclient"
	"healthdash/httpcall"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "healthctl"
	app.Usage = "probe upstream endpoints and query a running dashboard"
	app.Version = Version
	app.Writer = out
	app.Flags = []cli.Flag{
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "per-call timeout",
			Value:   httpcall.DefaultTimeout,
			EnvVars: []string{"HEALTHCTL_TIMEOUT"},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "probe",
			Usage:     "perform one timed call and report its outcome",
			ArgsUsage: "URL",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "method",
					Usage: "HTTP method",
					Value: http.MethodGet,
				},
				&cli.StringSliceFlag{
					Name:  "header",
					Usage: "request header as Key:Value, repeatable",
				},
				&cli.StringFlag{
					Name:  "data",
					Usage: "request body",
				},
			},
			Action: probe,
		},
		{
			Name:  "monitor",
			Usage: "fetch the aggregated monitor view from a dashboard",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "addr",
					Usage:   "dashboard base URL",
					Value:   "http://localhost:8080",
					EnvVars: []string{"HEALTHDASH_ADDR"},
				},
			},
			Action: monitor,
		},
	}
	return app
}

func probe(c *cli.Context) error {
	target := c.Args().First()
	if target == "" {
		return cli.Exit("probe: URL argument is required", 2)
	}

	header, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	req := httpcall.Request{
		Method:  strings.ToUpper(c.String("method")),
		URL:     target,
		Header:  header,
		Timeout: c.Duration("timeout"),
	}
	if data := c.String("data"); data != "" {
		req.Body = []byte(data)
	}

	start := time.Now()
	result := httpcall.New().Call(c.Context, req)
	elapsed := time.Since(start).Round(time.Millisecond)

	out := c.App.Writer
	var failed error
	result.Match(
		func(resp *httpcall.Response) {
			fmt.Fprintf(out, "outcome: success\nstatus: %d %s\nduration: %s\nbytes: %d\n",
				resp.StatusCode, resp.StatusText(), elapsed, len(resp.Body))
			if !resp.OK() {
				failed = cli.Exit("", 1)
			}
		},
		func(e *httpcall.Error) {
			fmt.Fprintf(out, "outcome: %s\nduration: %s\nerror: %v\n", e.Kind, elapsed, e)
			failed = cli.Exit("", 1)
		},
	)
	return failed
}

func monitor(c *cli.Context) error {
	result := httpcall.New().Call(c.Context, httpcall.Request{
		URL:     apiclient.JoinURL(c.String("addr"), "/api/health/monitor"),
		Header:  http.Header{"Accept": []string{"application/json"}},
		Timeout: c.Duration("timeout"),
	})

	resp, err := result.Get()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Body, "", "  "); err != nil {
		return cli.Exit(fmt.Sprintf("monitor: invalid JSON from dashboard: %v", err), 1)
	}
	pretty.WriteByte('\n')
	if _, err := pretty.WriteTo(c.App.Writer); err != nil {
		return err
	}

	if !resp.OK() {
		return cli.Exit(fmt.Sprintf("monitor: dashboard returned %d", resp.StatusCode), 1)
	}
	return nil
}

func parseHeaders(values []string) (http.Header, error) {
	header := http.Header{}
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid header %q, want Key:Value", v)
		}
		header.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return header, nil
}
