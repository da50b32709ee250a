/*
 * Copyright 2020 Dgraph Labs, Inc. and Contributors
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

package z

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SuperFlagHelp generates `--help` output for a SuperFlag. For example:
//
//	const defaults = `kind=lru; capacity=0;`
//
//	var help = z.NewSuperFlagHelp(defaults).
//		Flag("kind", "Eviction policy.").
//		Flag("capacity", "Cache capacity in vectors.").
//		Flag("seed", "Not present in defaults, but still included.").
//		String()
//
// Flags are sorted alphabetically. Flags with default values are placed at
// the top, and everything else goes under.
type SuperFlagHelp struct {
	defaults *SuperFlag
	flags    map[string]string
}

func NewSuperFlagHelp(defaults string) *SuperFlagHelp {
	sf, err := NewSuperFlag(defaults)
	if err != nil {
		panic(err)
	}
	return &SuperFlagHelp{
		defaults: sf,
		flags:    make(map[string]string),
	}
}

func (h *SuperFlagHelp) Flag(name, description string) *SuperFlagHelp {
	h.flags[name] = description
	return h
}

func (h *SuperFlagHelp) String() string {
	defaultLines := make([]string, 0)
	otherLines := make([]string, 0)
	for name, help := range h.flags {
		val, found := h.defaults.m[name]
		line := fmt.Sprintf("%s=%s; %s\n", name, val, help)
		if found {
			defaultLines = append(defaultLines, line)
		} else {
			otherLines = append(otherLines, line)
		}
	}
	sort.Strings(defaultLines)
	sort.Strings(otherLines)
	return strings.Join(defaultLines, "") + strings.Join(otherLines, "")
}

func parseFlag(flag string) (map[string]string, error) {
	kvm := make(map[string]string)
	for _, kv := range strings.Split(flag, ";") {
		if strings.TrimSpace(kv) == "" {
			continue
		}
		splits := strings.SplitN(kv, "=", 2)
		if len(splits) != 2 {
			return nil, errors.Errorf("option %q is not of the form key=value", strings.TrimSpace(kv))
		}
		k := strings.TrimSpace(splits[0])
		k = strings.ToLower(k)
		k = strings.ReplaceAll(k, "_", "-")
		kvm[k] = strings.TrimSpace(splits[1])
	}
	return kvm, nil
}

// SuperFlag is a set of `key=value` options separated by semicolons, e.g.
// `kind=pinned; capacity=100000; pincount=8`. Keys are case-insensitive and
// underscores are treated as dashes.
type SuperFlag struct {
	m map[string]string
}

func NewSuperFlag(flag string) (*SuperFlag, error) {
	m, err := parseFlag(flag)
	if err != nil {
		return nil, err
	}
	return &SuperFlag{m: m}, nil
}

func (sf *SuperFlag) String() string {
	if sf == nil {
		return ""
	}
	kvs := make([]string, 0, len(sf.m))
	for k, v := range sf.m {
		kvs = append(kvs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(kvs)
	return strings.Join(kvs, "; ")
}

// MergeAndCheckDefault fills in every option of defaults that sf does not set.
// It fails if sf carries an option that defaults does not know about.
func (sf *SuperFlag) MergeAndCheckDefault(defaults string) error {
	src, err := parseFlag(defaults)
	if err != nil {
		return errors.Wrap(err, "defaults")
	}
	var unknown []string
	for k := range sf.m {
		if _, ok := src[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.Errorf("found invalid options %v in %q. Valid options: %v",
			unknown, sf.String(), defaults)
	}
	for k, v := range src {
		if _, ok := sf.m[k]; !ok {
			sf.m[k] = v
		}
	}
	return nil
}

func (sf *SuperFlag) Has(opt string) bool {
	return sf.GetString(opt) != ""
}

func (sf *SuperFlag) GetString(opt string) string {
	if sf == nil {
		return ""
	}
	return sf.m[opt]
}

func (sf *SuperFlag) GetUint64(opt string) (uint64, error) {
	val := sf.GetString(opt)
	if val == "" {
		return 0, nil
	}
	u, err := strconv.ParseUint(val, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err,
			"unable to parse %s as uint64 for key: %s. Options: %s", val, opt, sf)
	}
	return u, nil
}

func (sf *SuperFlag) GetInt64(opt string) (int64, error) {
	val := sf.GetString(opt)
	if val == "" {
		return 0, nil
	}
	i, err := strconv.ParseInt(val, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err,
			"unable to parse %s as int64 for key: %s. Options: %s", val, opt, sf)
	}
	return i, nil
}
