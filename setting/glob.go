// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package setting

import "github.com/gobwas/glob"

type GlobMatcher struct {
	compiledGlob  glob.Glob
	patternString string
}

var _ glob.Glob = (*GlobMatcher)(nil)

func (g *GlobMatcher) Match(s string) bool {
	return g.compiledGlob.Match(s)
}

func (g *GlobMatcher) PatternString() string {
	return g.patternString
}

func GlobMatcherCompile(pattern string, separators ...rune) (*GlobMatcher, error) {
	g, err := glob.Compile(pattern, separators...)
	if err != nil {
		return nil, err
	}
	return &GlobMatcher{
		compiledGlob:  g,
		patternString: pattern,
	}, nil
}

// CompileGlobs compiles every pattern, failing on the first bad one.
func CompileGlobs(patterns []string) ([]*GlobMatcher, error) {
	matchers := make([]*GlobMatcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := GlobMatcherCompile(p, '/')
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}
