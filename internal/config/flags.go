// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// Flags holds the values bound to a pflag.FlagSet by [RegisterFlags].
// The values are read after the owning command parsed its arguments.
type Flags struct {
	httpAddress    NetAddress
	jsonConfigPath string
	databaseDSN    string
	adapterKind    string
	adapterURL     string
	adapterUser    string
	adapterPass    string
	requestTimeout time.Duration
	settleInterval time.Duration
	probePolicy    string
	logFile        string
	logLevel       string
	skipInitialRun bool
}

// RegisterFlags binds all configuration flags to fs.
//
// Flags:
//
//	-a/--http-address status server address in format [host]:[port]
//	-c/--config json file path with configs
//	-d/--dsn ledger DSN
//	--adapter-kind transport kind (webdav, s3, sftp)
//	--adapter-url remote endpoint
//	--adapter-user remote username
//	--adapter-password remote password
//	--request-timeout per-call transport timeout (e.g., "30s", "1m")
//	--settle-interval stability probe settle interval (e.g., "1s")
//	--probe-policy stability probe policy (strict, basic)
//	--log-file rotated log file path
//	--log-level log level (debug, info, warn, error)
//	--skip-initial-run do not run a cycle per profile at startup
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.VarP(&f.httpAddress, "http-address", "a", "Status server address host:port")
	fs.StringVarP(&f.jsonConfigPath, "config", "c", "", "JSON config file path")
	fs.StringVarP(&f.databaseDSN, "dsn", "d", "", "Ledger DSN")
	fs.StringVar(&f.adapterKind, "adapter-kind", "", "Transport kind (webdav, s3, sftp)")
	fs.StringVar(&f.adapterURL, "adapter-url", "", "Remote endpoint")
	fs.StringVar(&f.adapterUser, "adapter-user", "", "Remote username")
	fs.StringVar(&f.adapterPass, "adapter-password", "", "Remote password")
	fs.DurationVar(&f.requestTimeout, "request-timeout", 0, "Transport request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&f.settleInterval, "settle-interval", 0, "Stability probe settle interval (e.g., 1s)")
	fs.StringVar(&f.probePolicy, "probe-policy", "", "Stability probe policy (strict, basic)")
	fs.StringVar(&f.logFile, "log-file", "", "Rotated log file path")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level")
	fs.BoolVar(&f.skipInitialRun, "skip-initial-run", false, "Do not run a cycle per profile at startup")

	return f
}

func (f *Flags) config() *StructuredConfig {
	return &StructuredConfig{
		Storage: Storage{
			DB: DB{
				DSN: f.databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress: f.httpAddress.String(),
		},
		Adapter: Adapter{
			Kind:           f.adapterKind,
			URL:            f.adapterURL,
			Username:       f.adapterUser,
			Password:       f.adapterPass,
			RequestTimeout: f.requestTimeout,
		},
		Workers: Workers{
			SettleInterval: f.settleInterval,
			ProbePolicy:    f.probePolicy,
			SkipInitialRun: f.skipInitialRun,
		},
		Log: Log{
			File:  f.logFile,
			Level: f.logLevel,
		},
		JSONFilePath: f.jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Type returns the value type name shown in the flag usage.
func (a *NetAddress) Type() string {
	return "host:port"
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost"
// or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
