// Command rhttpcurl fetches a URL through the rhttp client and prints the
// equivalent curl -v command line alongside the response status, as a
// thin smoke-test binary for the library (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/realhttp-go/rhttp/client"
	"github.com/realhttp-go/rhttp/curl"
)

func main() {
	method := flag.String("X", http.MethodGet, "HTTP method")
	timeout := flag.Duration("timeout", 10*time.Second, "per-attempt timeout")
	maxRetries := flag.Uint("retries", 0, "max retry count")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rhttpcurl [-X METHOD] [-timeout D] [-retries N] <url>")
		os.Exit(2)
	}
	target := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := client.DefaultConfig()
	c := client.New(cfg)

	req := client.NewRequest(*method)
	req.AbsoluteURL = target
	req.Timeout = *timeout
	req.MaxRetries = *maxRetries

	fmt.Println(curl.Render(req.Method, target, req.Header, nil, "", curl.Options{}))

	resp, err := c.Fetch(context.Background(), req)
	if err != nil {
		logger.Error("fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Printf("status=%d bytes=%d\n", resp.StatusCode, len(resp.Data))
}
