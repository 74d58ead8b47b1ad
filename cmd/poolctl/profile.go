package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"vusdpool/cmd/internal/secret"
	poolclient "vusdpool/services/pool/client"
)

const (
	defaultAddress  = "127.0.0.1:50053"
	defaultTimeout  = 10 * time.Second
	defaultTokenEnv = "POOLCTL_TOKEN"
	profileEnv      = "POOLCTL_PROFILE"
	addressEnv      = "POOLCTL_ADDR"
)

// profile is the optional TOML file holding connection defaults.
type profile struct {
	Address    string `toml:"Address"`
	Token      string `toml:"Token"`
	TokenEnv   string `toml:"TokenEnv"`
	CAFile     string `toml:"CAFile"`
	ServerName string `toml:"ServerName"`
	Plaintext  bool   `toml:"Plaintext"`
	Timeout    string `toml:"Timeout"`
}

// connection is the resolved set of dial settings.
type connection struct {
	Address    string
	Token      string
	TokenEnv   string
	CAFile     string
	ServerName string
	Plaintext  bool
	Timeout    time.Duration
}

func defaultProfilePath() string {
	if path := strings.TrimSpace(os.Getenv(profileEnv)); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "poolctl", "profile.toml")
}

// loadProfile reads path. A missing file yields an empty profile unless the
// path was given explicitly.
func loadProfile(path string, explicit bool) (profile, error) {
	var p profile
	if path == "" {
		return p, nil
	}
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return profile{}, nil
		}
		return profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	return p, nil
}

// resolve merges flags over the profile over the environment.
func resolve(p profile, flags connection) (connection, error) {
	out := connection{
		Address:    firstNonEmpty(flags.Address, p.Address, os.Getenv(addressEnv), defaultAddress),
		Token:      firstNonEmpty(flags.Token, p.Token),
		TokenEnv:   firstNonEmpty(flags.TokenEnv, p.TokenEnv, defaultTokenEnv),
		CAFile:     firstNonEmpty(flags.CAFile, p.CAFile),
		ServerName: firstNonEmpty(flags.ServerName, p.ServerName),
		Plaintext:  flags.Plaintext || p.Plaintext,
		Timeout:    flags.Timeout,
	}
	if out.Timeout <= 0 && strings.TrimSpace(p.Timeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(p.Timeout))
		if err != nil {
			return connection{}, fmt.Errorf("profile timeout: %w", err)
		}
		out.Timeout = d
	}
	if out.Timeout <= 0 {
		out.Timeout = defaultTimeout
	}
	if out.Plaintext && out.CAFile != "" {
		return connection{}, errors.New("ca file cannot be combined with plaintext")
	}
	return out, nil
}

// token returns the bearer token, prompting when neither the flag, the
// profile nor the environment provide one.
func (c connection) token() (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}
	return secret.NewSource(c.TokenEnv, "pool API token").Get()
}

func (c connection) dialOptions(withToken bool) ([]grpc.DialOption, error) {
	var opts []grpc.DialOption
	if c.Plaintext {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, ServerName: c.ServerName}
		if c.CAFile != "" {
			pem, err := os.ReadFile(c.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, errors.New("parse ca file: invalid pem data")
			}
			tlsCfg.RootCAs = pool
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsCfg)))
	}
	if withToken {
		token, err := c.token()
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithPerRPCCredentials(poolclient.BearerToken{Token: token, AllowInsecure: c.Plaintext}))
	}
	return opts, nil
}

// dialPool is swapped out in tests.
var dialPool = func(ctx context.Context, conn connection, withToken bool) (*poolclient.Client, error) {
	opts, err := conn.dialOptions(withToken)
	if err != nil {
		return nil, err
	}
	return poolclient.Dial(ctx, conn.Address, opts...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
