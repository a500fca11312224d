// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type pkgStats struct {
	prod, test int
}

// Stats prints Go lines of code per package, production and test.
func Stats() error {
	byPkg := map[string]*pkgStats{}

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, err := countLines(path)
		if err != nil {
			return nil
		}
		dir := filepath.Dir(path)
		s, ok := byPkg[dir]
		if !ok {
			s = &pkgStats{}
			byPkg[dir] = s
		}
		if strings.HasSuffix(path, "_test.go") {
			s.test += count
		} else {
			s.prod += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(byPkg))
	for dir := range byPkg {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var total pkgStats
	fmt.Printf("%-28s %8s %8s\n", "PACKAGE", "PROD", "TEST")
	for _, dir := range dirs {
		s := byPkg[dir]
		fmt.Printf("%-28s %8d %8d\n", dir, s.prod, s.test)
		total.prod += s.prod
		total.test += s.test
	}
	fmt.Printf("%-28s %8d %8d\n", "total", total.prod, total.test)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
