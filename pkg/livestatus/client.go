/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package livestatus talks to the monitoring core over its livestatus socket.
package livestatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/autochecks/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	headerLength   = 16
	statusOK       = 200

	// DiscoveryServiceDescription is the service running the periodic discovery check.
	DiscoveryServiceDescription = "Check_MK Discovery"
)

// Host states reported by the core.
const (
	HostUp          = 0
	HostDown        = 1
	HostUnreachable = 2
)

// Client sends queries and external commands to a livestatus unix socket.
// Every call opens its own connection.
type Client struct {
	socket  string
	timeout time.Duration
	dialer  net.Dialer
	logger  logger.Logger
}

func NewClient(socket string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{socket: socket, timeout: timeout, logger: log}
}

// Query runs a GET query and returns the rows of the JSON response.
func (c *Client) Query(ctx context.Context, query string) ([][]interface{}, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.close(conn)

	request := strings.TrimRight(query, "\n") + "\nOutputFormat: json\nResponseHeader: fixed16\n\n"
	if _, err := io.WriteString(conn, request); err != nil {
		return nil, fmt.Errorf("%w: write query: %w", ErrUnavailable, err)
	}

	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}

	status, body, err := readResponse(conn)
	if err != nil {
		return nil, err
	}

	if status != statusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrQueryFailed, status, strings.TrimSpace(string(body)))
	}

	var rows [][]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return rows, nil
}

// Command sends one external command stamped with at.
func (c *Client) Command(ctx context.Context, command string, at time.Time) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer c.close(conn)

	line := fmt.Sprintf("COMMAND [%d] %s\n", at.Unix(), command)
	if _, err := io.WriteString(conn, line); err != nil {
		return fmt.Errorf("%w: write command: %w", ErrUnavailable, err)
	}

	c.logger.Debug().Str("command", command).Msg("Sent livestatus command")

	return nil
}

// HostStates returns the current state of every host known to the core.
func (c *Client) HostStates(ctx context.Context) (map[string]int, error) {
	rows, err := c.Query(ctx, "GET hosts\nColumns: name state")
	if err != nil {
		return nil, err
	}

	states := make(map[string]int, len(rows))

	for _, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("%w: host row %v", ErrMalformedResponse, row)
		}

		name, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: host name %v", ErrMalformedResponse, row[0])
		}

		state, ok := row[1].(float64)
		if !ok {
			return nil, fmt.Errorf("%w: host state %v", ErrMalformedResponse, row[1])
		}

		states[name] = int(state)
	}

	return states, nil
}

// ScheduleForcedServiceCheck asks the core to run service on host at the given time.
func (c *Client) ScheduleForcedServiceCheck(ctx context.Context, host, service string, at time.Time) error {
	return c.Command(ctx, fmt.Sprintf("SCHEDULE_FORCED_SVC_CHECK;%s;%s;%d", host, service, at.Unix()), at)
}

// Reload asks the core to reload its configuration.
func (c *Client) Reload(ctx context.Context, at time.Time) error {
	return c.Command(ctx, "RESTART_PROCESS", at)
}

func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	if c.socket == "" {
		return nil, fmt.Errorf("%w: no socket configured", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "unix", c.socket)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		c.close(conn)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return conn, nil
}

func (c *Client) close(conn net.Conn) {
	if err := conn.Close(); err != nil {
		c.logger.Debug().Err(err).Str("socket", c.socket).Msg("Failed to close livestatus connection")
	}
}

// readResponse parses a fixed16 response: three digit status, padded body
// length, newline, then the body.
func readResponse(r io.Reader) (int, []byte, error) {
	header := make([]byte, headerLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("%w: read header: %w", ErrMalformedResponse, err)
	}

	status, err := strconv.Atoi(string(header[:3]))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: status %q", ErrMalformedResponse, header[:3])
	}

	length, err := strconv.Atoi(strings.TrimSpace(string(header[3:])))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: length %q", ErrMalformedResponse, header[3:])
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %w", ErrMalformedResponse, err)
	}

	return status, body, nil
}

// IsUnavailable reports whether err means the core could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
