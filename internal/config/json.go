// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// StructuredJSONConfig mirrors the layout of the JSON configuration file.
type StructuredJSONConfig struct {
	App struct {
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		Kind           string   `json:"kind"`
		URL            string   `json:"url"`
		Username       string   `json:"username"`
		Password       string   `json:"password"`
		RequestTimeout Duration `json:"request_timeout"`
		Bucket         string   `json:"bucket"`
		Region         string   `json:"region"`
		KeyFile        string   `json:"key_file"`
		KnownHostsFile string   `json:"known_hosts_file"`
		Insecure       bool     `json:"insecure"`
	} `json:"adapter,omitempty"`

	// WebDAV is the legacy transport section: {"url", "username", "password"}.
	// It is used only when the adapter section has no URL.
	WebDAV *struct {
		URL      string `json:"url"`
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"webdav,omitempty"`

	Workers struct {
		SettleInterval  Duration `json:"settle_interval"`
		DefaultInterval Duration `json:"default_interval"`
		ProbePolicy     string   `json:"probe_policy"`
		SkipInitialRun  bool     `json:"skip_initial_run"`
	} `json:"workers,omitempty"`

	Log struct {
		File       string `json:"file"`
		Level      string `json:"level"`
		MaxSizeMB  int    `json:"max_size_mb"`
		MaxBackups int    `json:"max_backups"`
	} `json:"log,omitempty"`

	Sync []jsonProfile `json:"sync"`
}

type jsonProfile struct {
	LocalDir            string   `json:"local_directory"`
	StagingDir          string   `json:"sync_directory"`
	RemoteDir           string   `json:"remote_directory"`
	RemoteRetentionDays int      `json:"remote_save_day"`
	LocalRetentionDays  int      `json:"local_save_day"`
	Batch               bool     `json:"zip"`
	Cron                string   `json:"cron"`
	Interval            Duration `json:"interval"`
	Exclude             []string `json:"exclude"`
}

func (p jsonProfile) profile() models.Profile {
	return models.Profile{
		LocalDir:            p.LocalDir,
		StagingDir:          p.StagingDir,
		RemoteDir:           p.RemoteDir,
		RemoteRetentionDays: p.RemoteRetentionDays,
		LocalRetentionDays:  p.LocalRetentionDays,
		Batch:               p.Batch,
		Cron:                p.Cron,
		Interval:            time.Duration(p.Interval),
		Exclude:             p.Exclude,
	}
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Version: jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			ShutdownTimeout: time.Duration(jsonCfg.Server.ShutdownTimeout),
		},
		Adapter: Adapter{
			Kind:           jsonCfg.Adapter.Kind,
			URL:            jsonCfg.Adapter.URL,
			Username:       jsonCfg.Adapter.Username,
			Password:       jsonCfg.Adapter.Password,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			Bucket:         jsonCfg.Adapter.Bucket,
			Region:         jsonCfg.Adapter.Region,
			KeyFile:        jsonCfg.Adapter.KeyFile,
			KnownHostsFile: jsonCfg.Adapter.KnownHostsFile,
			Insecure:       jsonCfg.Adapter.Insecure,
		},
		Workers: Workers{
			SettleInterval:  time.Duration(jsonCfg.Workers.SettleInterval),
			DefaultInterval: time.Duration(jsonCfg.Workers.DefaultInterval),
			ProbePolicy:     jsonCfg.Workers.ProbePolicy,
			SkipInitialRun:  jsonCfg.Workers.SkipInitialRun,
		},
		Log: Log{
			File:       jsonCfg.Log.File,
			Level:      jsonCfg.Log.Level,
			MaxSizeMB:  jsonCfg.Log.MaxSizeMB,
			MaxBackups: jsonCfg.Log.MaxBackups,
		},
		JSONFilePath: "",
	}

	if cfg.Adapter.URL == "" && jsonCfg.WebDAV != nil {
		cfg.Adapter.Kind = AdapterWebDAV
		cfg.Adapter.URL = jsonCfg.WebDAV.URL
		cfg.Adapter.Username = jsonCfg.WebDAV.Username
		cfg.Adapter.Password = jsonCfg.WebDAV.Password
	}

	for _, p := range jsonCfg.Sync {
		cfg.Profiles = append(cfg.Profiles, p.profile())
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
