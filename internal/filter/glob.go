// Copyright 2018-2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"strings"

	"github.com/gobwas/glob"
)

type Filter interface {
	// MatchSpan reports whether a span with the given name and attribute tags should be exported.
	MatchSpan(name string, tags map[string]string) bool
	// MatchAttribute reports whether an attribute key should become an event field.
	MatchAttribute(key string) bool
}

type globFilter struct {
	spanAllowList    glob.Glob
	spanDenyList     glob.Glob
	spanTagAllowList map[string]glob.Glob
	spanTagDenyList  map[string]glob.Glob
	attributeInclude glob.Glob
	attributeExclude glob.Glob
}

func NewGlobFilter(cfg Config) Filter {
	return &globFilter{
		spanAllowList:    Compile(cfg.SpanAllowList),
		spanDenyList:     Compile(cfg.SpanDenyList),
		spanTagAllowList: MultiCompile(cfg.SpanTagAllowList),
		spanTagDenyList:  MultiCompile(cfg.SpanTagDenyList),
		attributeInclude: Compile(cfg.AttributeInclude),
		attributeExclude: Compile(cfg.AttributeExclude),
	}
}

func Compile(filters []string) glob.Glob {
	if len(filters) == 0 {
		return nil
	}
	if len(filters) == 1 {
		g, _ := glob.Compile(filters[0])
		return g
	}
	g, _ := glob.Compile("{" + strings.Join(filters, ",") + "}")
	return g
}

func MultiCompile(filters map[string][]string) map[string]glob.Glob {
	if len(filters) == 0 {
		return nil
	}
	globs := make(map[string]glob.Glob, len(filters))
	for k, v := range filters {
		g := Compile(v)
		if g != nil {
			globs[k] = g
		}
	}
	return globs
}

func (gf *globFilter) MatchSpan(name string, tags map[string]string) bool {
	if gf.spanAllowList != nil && !gf.spanAllowList.Match(name) {
		return false
	}
	if gf.spanDenyList != nil && gf.spanDenyList.Match(name) {
		return false
	}

	if gf.spanTagAllowList != nil && !MatchesTags(gf.spanTagAllowList, tags) {
		return false
	}
	if gf.spanTagDenyList != nil && MatchesTags(gf.spanTagDenyList, tags) {
		return false
	}
	return true
}

func (gf *globFilter) MatchAttribute(key string) bool {
	if gf.attributeInclude != nil && !gf.attributeInclude.Match(key) {
		return false
	}
	if gf.attributeExclude != nil && gf.attributeExclude.Match(key) {
		return false
	}
	return true
}

func MatchesTags(matchers map[string]glob.Glob, tags map[string]string) bool {
	for k, matcher := range matchers {
		if val, ok := tags[k]; ok {
			if matcher.Match(val) {
				return true
			}
		}
	}
	return false
}
