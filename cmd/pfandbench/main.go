// pfandbench measures checkout/return latency against a running pfand daemon.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

type leaseInfo struct {
	ID        string    `json:"id"`
	Slot      string    `json:"slot"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

type statusResponse struct {
	Available   int `json:"available"`
	Capacity    int `json:"capacity"`
	Outstanding int `json:"outstanding"`
	Acquired    int `json:"acquired"`
	Returned    int `json:"returned"`
	Discarded   int `json:"discarded"`
}

type cycle struct {
	LeaseID    string  `json:"lease_id"`
	CheckoutMs float64 `json:"checkout_ms"`
	ReturnMs   float64 `json:"return_ms"`
}

type summary struct {
	Count         int     `json:"count"`
	CheckoutAvgMs float64 `json:"checkout_avg_ms"`
	CheckoutP50Ms float64 `json:"checkout_p50_ms"`
	CheckoutP95Ms float64 `json:"checkout_p95_ms"`
	CheckoutMaxMs float64 `json:"checkout_max_ms"`
	ReturnAvgMs   float64 `json:"return_avg_ms"`
	ReturnP50Ms   float64 `json:"return_p50_ms"`
	ReturnP95Ms   float64 `json:"return_p95_ms"`
	ReturnMaxMs   float64 `json:"return_max_ms"`
}

type report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Host        string         `json:"host"`
	Iterations  int            `json:"iterations"`
	Status      statusResponse `json:"pool_status"`
	Cycles      []cycle        `json:"cycles"`
	Summary     summary        `json:"summary"`
}

func main() {
	host := flag.String("host", "http://127.0.0.1:8070", "pfand daemon base URL")
	apiKey := flag.String("api-key", os.Getenv("PFAND_API_KEY"), "API key (or PFAND_API_KEY)")
	iterations := flag.Int("n", 20, "checkout/return cycles to run")
	ttl := flag.Int("ttl", 60, "lease ttl_seconds per checkout")
	jsonOut := flag.String("json", "", "write full report to this file")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	c := newClient(*host, *apiKey)

	status, err := c.status(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pfandbench: status: %v\n", err)
		os.Exit(1)
	}
	if status.Available == 0 {
		fmt.Fprintln(os.Stderr, "pfandbench: pool has no available slots, aborting")
		os.Exit(1)
	}

	rep := report{
		GeneratedAt: time.Now().UTC(),
		Host:        *host,
		Iterations:  *iterations,
	}

	for i := 0; i < *iterations; i++ {
		start := time.Now()
		lease, err := c.checkout(ctx, *ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pfandbench: checkout %d: %v\n", i, err)
			os.Exit(1)
		}
		checkoutMs := float64(time.Since(start).Microseconds()) / 1000

		start = time.Now()
		if err := c.returnLease(ctx, lease.ID); err != nil {
			fmt.Fprintf(os.Stderr, "pfandbench: return %s: %v\n", lease.ID, err)
			os.Exit(1)
		}
		returnMs := float64(time.Since(start).Microseconds()) / 1000

		rep.Cycles = append(rep.Cycles, cycle{
			LeaseID:    lease.ID,
			CheckoutMs: checkoutMs,
			ReturnMs:   returnMs,
		})
	}

	rep.Summary = summarize(rep.Cycles)
	rep.Status, _ = c.status(ctx)

	printReport(rep)

	if *jsonOut != "" {
		data, _ := json.MarshalIndent(rep, "", "  ")
		if err := os.WriteFile(*jsonOut, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "pfandbench: write report: %v\n", err)
			os.Exit(1)
		}
	}
}

func summarize(cycles []cycle) summary {
	s := summary{Count: len(cycles)}
	if len(cycles) == 0 {
		return s
	}

	checkouts := make([]float64, 0, len(cycles))
	returns := make([]float64, 0, len(cycles))
	for _, c := range cycles {
		checkouts = append(checkouts, c.CheckoutMs)
		returns = append(returns, c.ReturnMs)
	}
	sort.Float64s(checkouts)
	sort.Float64s(returns)

	s.CheckoutAvgMs = avg(checkouts)
	s.CheckoutP50Ms = percentile(checkouts, 50)
	s.CheckoutP95Ms = percentile(checkouts, 95)
	s.CheckoutMaxMs = checkouts[len(checkouts)-1]
	s.ReturnAvgMs = avg(returns)
	s.ReturnP50Ms = percentile(returns, 50)
	s.ReturnP95Ms = percentile(returns, 95)
	s.ReturnMaxMs = returns[len(returns)-1]
	return s
}

func avg(sorted []float64) float64 {
	var total float64
	for _, v := range sorted {
		total += v
	}
	return total / float64(len(sorted))
}

// percentile expects a sorted slice.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}

func printReport(rep report) {
	fmt.Printf("pfandbench: %d cycles against %s\n", rep.Summary.Count, rep.Host)
	fmt.Printf("  checkout  avg %.2fms  p50 %.2fms  p95 %.2fms  max %.2fms\n",
		rep.Summary.CheckoutAvgMs, rep.Summary.CheckoutP50Ms, rep.Summary.CheckoutP95Ms, rep.Summary.CheckoutMaxMs)
	fmt.Printf("  return    avg %.2fms  p50 %.2fms  p95 %.2fms  max %.2fms\n",
		rep.Summary.ReturnAvgMs, rep.Summary.ReturnP50Ms, rep.Summary.ReturnP95Ms, rep.Summary.ReturnMaxMs)
	fmt.Printf("  pool      available %d/%d  acquired %d  returned %d  discarded %d\n",
		rep.Status.Available, rep.Status.Capacity, rep.Status.Acquired, rep.Status.Returned, rep.Status.Discarded)
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newClient(baseURL, apiKey string) *client {
	return &client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: strings.TrimSpace(apiKey), http: &http.Client{}}
}

func (c *client) checkout(ctx context.Context, ttl int) (*leaseInfo, error) {
	var out leaseInfo
	body := map[string]any{"ttl_seconds": ttl}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/leases", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) returnLease(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/leases/"+id, nil, nil)
}

func (c *client) status(ctx context.Context) (statusResponse, error) {
	var out statusResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/status", nil, &out)
	return out, err
}

func (c *client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s %s", method, path, resp.Status, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
