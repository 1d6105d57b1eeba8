// Command smoke drives a running concord server through upload, compare and
// results, exiting non-zero on the first failure.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	leftDoc  = `[{"file":"doc_en.json","para":[{"para":"The fee is 100 EUR, payable by 1 May 2024.","para_number":1},{"para":"This agreement is governed by Belgian law.","para_number":2}]}]`
	rightDoc = `[{"file":"doc_de.json","para":[{"para":"Die Gebühr beträgt 120 EUR, zahlbar bis 1. Mai 2024.","para_number":1},{"para":"Dieser Vertrag unterliegt belgischem Recht.","para_number":2}]}]`
)

var client = &http.Client{Timeout: 5 * time.Minute}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Server base URL")
	wait := flag.Duration("wait", 2*time.Second, "Time to wait for the server to start")
	flag.Parse()

	time.Sleep(*wait)
	fmt.Println("Starting smoke test...")

	steps := []struct {
		name   string
		method string
		path   string
		ctype  string
		body   []byte
	}{
		{"health", http.MethodGet, "/healthz", "", nil},
		{"upload doc 1", http.MethodPost, "/upload/doc/1", "application/json", []byte(leftDoc)},
		{"upload doc 2", http.MethodPost, "/upload/doc/2", "application/json", []byte(rightDoc)},
		{"compare", http.MethodPost, "/compare", "", nil},
		{"latest results", http.MethodGet, "/results", "", nil},
	}

	var compared struct {
		ID      string            `json:"id"`
		Results []json.RawMessage `json:"results"`
	}
	for i, s := range steps {
		fmt.Printf("%d. %s...\n", i+1, s.name)
		body, ok := sendRequest(*baseURL, s.method, s.path, s.ctype, s.body)
		if !ok {
			fmt.Printf("FAILED: %s\n", s.name)
			os.Exit(1)
		}
		if s.name == "compare" {
			if err := json.Unmarshal(body, &compared); err != nil || compared.ID == "" {
				fmt.Printf("FAILED: compare returned an unexpected body: %s\n", body)
				os.Exit(1)
			}
		}
		fmt.Printf("PASSED: %s\n", s.name)
	}

	fmt.Printf("Comparison %s produced %d results\n", compared.ID, len(compared.Results))
	if _, ok := sendRequest(*baseURL, http.MethodGet, "/results/"+compared.ID, "", nil); !ok {
		fmt.Println("FAILED: results by id")
		os.Exit(1)
	}
	fmt.Println("PASSED: results by id")
}

func sendRequest(baseURL, method, endpoint, contentType string, payload []byte) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
