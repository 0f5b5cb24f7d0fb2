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

package sections

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

// Section names produced by the SNMP provider.
const (
	SectionSNMPInfo   = "snmp_info"
	SectionInterfaces = "if"
	SectionUptime     = "snmp_uptime"
)

// System OIDs
const (
	oidSysDescr    = ".1.3.6.1.2.1.1.1.0"
	oidSysObjectID = ".1.3.6.1.2.1.1.2.0"
	oidSysUptime   = ".1.3.6.1.2.1.1.3.0"
	oidSysContact  = ".1.3.6.1.2.1.1.4.0"
	oidSysName     = ".1.3.6.1.2.1.1.5.0"
	oidSysLocation = ".1.3.6.1.2.1.1.6.0"
)

// Interface OIDs
const (
	oidIfTable       = ".1.3.6.1.2.1.2.2.1"
	oidIfDescr       = ".1.3.6.1.2.1.2.2.1.2"
	oidIfType        = ".1.3.6.1.2.1.2.2.1.3"
	oidIfSpeed       = ".1.3.6.1.2.1.2.2.1.5"
	oidIfPhysAddress = ".1.3.6.1.2.1.2.2.1.6"
	oidIfAdminStatus = ".1.3.6.1.2.1.2.2.1.7"
	oidIfOperStatus  = ".1.3.6.1.2.1.2.2.1.8"

	oidIfXTable    = ".1.3.6.1.2.1.31.1.1.1"
	oidIfName      = ".1.3.6.1.2.1.31.1.1.1.1"
	oidIfHighSpeed = ".1.3.6.1.2.1.31.1.1.1.15"
	oidIfAlias     = ".1.3.6.1.2.1.31.1.1.1.18"
)

const (
	defaultMaxRepetitions = 10
	ticksPerSecond        = 100
	megabit               = 1000 * 1000
)

// DefaultTables are fetched when a host does not list its own.
var DefaultTables = []string{SectionSNMPInfo, SectionUptime, SectionInterfaces} //nolint:gochecknoglobals // read-only default

// SNMPTarget describes how to reach one host.
type SNMPTarget struct {
	Address   string
	Port      uint16
	Community string
	Version   string
	Timeout   time.Duration
	Retries   int
	Tables    []string
}

// session is the part of a gosnmp client the provider uses.
type session interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Walk(root string, fn gosnmp.WalkFunc) error
	Close() error
}

// dialer opens an SNMP session to target.
type dialer func(ctx context.Context, target SNMPTarget) (session, error)

// SNMPProvider walks the configured tables of a device into sections.
type SNMPProvider struct {
	dial   dialer
	logger logger.Logger
}

func NewSNMPProvider(log logger.Logger) *SNMPProvider {
	return &SNMPProvider{dial: dialGoSNMP, logger: log}
}

// Fetch connects to target and builds one section per table.
func (p *SNMPProvider) Fetch(ctx context.Context, target SNMPTarget) (models.Sections, error) {
	tables := target.Tables
	if len(tables) == 0 {
		tables = DefaultTables
	}

	s, err := p.dial(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", target.Address, err)
	}

	defer func() {
		if cerr := s.Close(); cerr != nil {
			p.logger.Debug().Err(cerr).Str("target", target.Address).Msg("Failed to close SNMP session")
		}
	}()

	out := make(models.Sections, len(tables))

	var sys map[string]interface{}

	for _, table := range tables {
		switch table {
		case SectionSNMPInfo, SectionUptime:
			if sys == nil {
				if sys, err = querySystem(s); err != nil {
					return nil, fmt.Errorf("system group of %s: %w", target.Address, err)
				}
			}

			if table == SectionSNMPInfo {
				out[table] = systemInfo(sys)
			} else if ticks, ok := sys["uptime_ticks"].(uint32); ok {
				out[table] = map[string]interface{}{"uptime_seconds": int64(ticks / ticksPerSecond)}
			}
		case SectionInterfaces:
			ifaces, err := queryInterfaces(s)
			if err != nil {
				p.logger.Warn().Err(err).Str("target", target.Address).Msg("Failed to walk interface tables")
				continue
			}

			out[table] = ifaces
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
		}
	}

	return out, nil
}

func querySystem(s session) (map[string]interface{}, error) {
	result, err := s.Get([]string{oidSysDescr, oidSysObjectID, oidSysUptime, oidSysContact, oidSysName, oidSysLocation})
	if err != nil {
		return nil, fmt.Errorf("SNMP Get failed: %w", err)
	}

	if result.Error != gosnmp.NoError {
		return nil, fmt.Errorf("SNMP error: %s", result.Error)
	}

	sys := make(map[string]interface{})

	for _, v := range result.Variables {
		if v.Type == gosnmp.NoSuchObject || v.Type == gosnmp.NoSuchInstance {
			continue
		}

		switch v.Name {
		case oidSysDescr:
			sys["descr"] = octets(v)
		case oidSysObjectID:
			if v.Type == gosnmp.ObjectIdentifier {
				sys["object_id"], _ = v.Value.(string)
			}
		case oidSysUptime:
			if v.Type == gosnmp.TimeTicks {
				sys["uptime_ticks"], _ = v.Value.(uint32)
			}
		case oidSysContact:
			sys["contact"] = octets(v)
		case oidSysName:
			sys["name"] = octets(v)
		case oidSysLocation:
			sys["location"] = octets(v)
		}
	}

	if len(sys) == 0 {
		return nil, ErrNoSNMPData
	}

	return sys, nil
}

func systemInfo(sys map[string]interface{}) map[string]interface{} {
	info := make(map[string]interface{}, len(sys))

	for k, v := range sys {
		if k != "uptime_ticks" {
			info[k] = v
		}
	}

	return info
}

func queryInterfaces(s session) ([]interface{}, error) {
	ifMap := make(map[int]map[string]interface{})

	entry := func(name string) (map[string]interface{}, string, bool) {
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			return nil, "", false
		}

		ifIndex, err := strconv.Atoi(name[idx+1:])
		if err != nil {
			return nil, "", false
		}

		e, ok := ifMap[ifIndex]
		if !ok {
			e = map[string]interface{}{"index": ifIndex}
			ifMap[ifIndex] = e
		}

		return e, name[:idx], true
	}

	err := s.Walk(oidIfTable, func(pdu gosnmp.SnmpPDU) error {
		e, column, ok := entry(pdu.Name)
		if !ok {
			return nil
		}

		switch column {
		case oidIfDescr:
			e["descr"] = octets(pdu)
		case oidIfType:
			e["type"] = integer(pdu)
		case oidIfSpeed:
			e["speed"] = gosnmp.ToBigInt(pdu.Value).Int64()
		case oidIfPhysAddress:
			if mac, ok := pdu.Value.([]byte); ok {
				e["mac"] = formatMACAddress(mac)
			}
		case oidIfAdminStatus:
			e["admin_status"] = integer(pdu)
		case oidIfOperStatus:
			e["oper_status"] = integer(pdu)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk ifTable: %w", err)
	}

	// ifXTable is optional
	_ = s.Walk(oidIfXTable, func(pdu gosnmp.SnmpPDU) error {
		e, column, ok := entry(pdu.Name)
		if !ok {
			return nil
		}

		switch column {
		case oidIfName:
			e["name"] = octets(pdu)
		case oidIfAlias:
			e["alias"] = octets(pdu)
		case oidIfHighSpeed:
			if high := gosnmp.ToBigInt(pdu.Value).Int64() * megabit; high > 0 {
				e["speed"] = high
			}
		}

		return nil
	})

	indexes := make([]int, 0, len(ifMap))
	for idx := range ifMap {
		indexes = append(indexes, idx)
	}

	sort.Ints(indexes)

	out := make([]interface{}, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, ifMap[idx])
	}

	return out, nil
}

func octets(pdu gosnmp.SnmpPDU) string {
	if pdu.Type != gosnmp.OctetString {
		return ""
	}

	b, _ := pdu.Value.([]byte)

	return string(b)
}

func integer(pdu gosnmp.SnmpPDU) int {
	if pdu.Type != gosnmp.Integer {
		return 0
	}

	v, _ := pdu.Value.(int)

	return v
}

func formatMACAddress(mac []byte) string {
	if len(mac) != 6 {
		return ""
	}

	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

// goSNMPSession adapts a connected gosnmp client.
type goSNMPSession struct {
	client *gosnmp.GoSNMP
}

func (s *goSNMPSession) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return s.client.Get(oids)
}

// Walk uses GETBULK except for SNMPv1, which lacks it.
func (s *goSNMPSession) Walk(root string, fn gosnmp.WalkFunc) error {
	if s.client.Version == gosnmp.Version1 {
		return s.client.Walk(root, fn)
	}

	return s.client.BulkWalk(root, fn)
}

func (s *goSNMPSession) Close() error {
	if s.client.Conn == nil {
		return nil
	}

	return s.client.Conn.Close()
}

func dialGoSNMP(ctx context.Context, target SNMPTarget) (session, error) {
	client := &gosnmp.GoSNMP{
		Context:            ctx,
		Target:             target.Address,
		Port:               target.Port,
		Community:          target.Community,
		Timeout:            target.Timeout,
		Retries:            target.Retries,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     defaultMaxRepetitions,
		ExponentialTimeout: true,
	}

	switch strings.ToLower(target.Version) {
	case "v1", "1":
		client.Version = gosnmp.Version1
	case "v2c", "2c", "":
		client.Version = gosnmp.Version2c
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSNMPVersion, target.Version)
	}

	if err := client.Connect(); err != nil {
		return nil, err
	}

	return &goSNMPSession{client: client}, nil
}
