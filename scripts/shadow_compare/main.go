// Command shadow_compare replays read-only portal requests against the
// legacy administration backend and the Go API and reports response
// differences. Volatile fields such as scan timestamps are stripped before
// comparing, since both sides recompute them per request.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target        target
	LegacyStatus  int
	GoStatus      int
	StatusMatch   bool
	BodyMatch     bool
	Err           error
	GoDuration    time.Duration
	LegacyDur     time.Duration
}

// volatileKeys are recomputed on every read and never meaningful to diff.
var volatileKeys = map[string]bool{
	"refreshed_at": true,
	"request_id":   true,
}

func main() {
	var (
		goBase      string
		legacyBase  string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "legacy portal base URL")
	flag.StringVar(&token, "token", os.Getenv("SHADOW_TOKEN"), "staff bearer token sent to both sides")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "JSON targets file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var results []result
	breaking := 0
	for _, tgt := range targets {
		res := compare(client, goBase, legacyBase, token, tgt)
		if tgt.Critical && (res.Err != nil || !res.StatusMatch || !res.BodyMatch) {
			breaking++
		}
		results = append(results, res)
	}

	report(results)
	fmt.Printf("breaking diffs: %d of %d targets\n", breaking, len(targets))
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compare(client *http.Client, goBase, legacyBase, token string, tgt target) result {
	res := result{Target: tgt}

	goStatus, goBody, goDur, err := fetch(client, goBase, token, tgt)
	if err != nil {
		res.Err = fmt.Errorf("go request: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := fetch(client, legacyBase, token, tgt)
	if err != nil {
		res.Err = fmt.Errorf("legacy request: %w", err)
		return res
	}

	res.GoStatus = goStatus
	res.LegacyStatus = legacyStatus
	res.GoDuration = goDur
	res.LegacyDur = legacyDur
	res.StatusMatch = goStatus == legacyStatus
	res.BodyMatch = bodiesEqual(goBody, legacyBody)
	return res
}

func fetch(client *http.Client, base, token string, tgt target) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

// normalize strips volatile keys and collapses whole-number floats so the
// legacy backend's string-typed ints do not show up as diffs.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, inner := range val {
			if volatileKeys[k] {
				delete(val, k)
				continue
			}
			normalize(&inner)
			val[k] = inner
		}
	case []interface{}:
		for i, inner := range val {
			normalize(&inner)
			val[i] = inner
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(results []result) {
	fmt.Println("shadow compare")
	fmt.Println("==============")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case !res.StatusMatch || !res.BodyMatch:
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Err != nil {
			fmt.Printf("  error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  go %d (%s) | legacy %d (%s) | status match %t | body match %t\n",
			res.GoStatus, res.GoDuration, res.LegacyStatus, res.LegacyDur, res.StatusMatch, res.BodyMatch)
	}
}
