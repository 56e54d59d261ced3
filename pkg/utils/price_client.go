package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	quoteAPIBase = "https://lite-api.jup.ag/swap/v1/quote"
	usdcMint     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	wsolMint     = "So11111111111111111111111111111111111111112"

	quoteCacheTTL = 30 * time.Second
)

// QuoteResponse is the subset of the Jupiter quote response the fee
// calculator needs.
type QuoteResponse struct {
	InputMint  string `json:"inputMint"`
	InAmount   string `json:"inAmount"`
	OutputMint string `json:"outputMint"`
	OutAmount  string `json:"outAmount"`
	SwapMode   string `json:"swapMode"`
}

type cachedQuote struct {
	lamports  uint64
	fetchedAt time.Time
}

var (
	quoteHTTPClient = &http.Client{Timeout: 5 * time.Second}
	quoteCache      = make(map[string]cachedQuote)
	quoteCacheMu    sync.Mutex
)

// GetUSDQuoteInLamports converts a USD amount into lamports via the USDC
// route of the quote API. Results are cached briefly so bursts of claim
// computations do not hammer the oracle. Callers must treat any error as a
// signal to fall back to a static native fee.
func GetUSDQuoteInLamports(usd float64) (uint64, error) {
	if usd <= 0 {
		return 0, nil
	}

	// USDC 是 6 位小数
	usdcAmount := strconv.FormatInt(int64(usd*1e6), 10)

	quoteCacheMu.Lock()
	if cached, ok := quoteCache[usdcAmount]; ok && time.Since(cached.fetchedAt) < quoteCacheTTL {
		quoteCacheMu.Unlock()
		return cached.lamports, nil
	}
	quoteCacheMu.Unlock()

	params := url.Values{}
	params.Set("inputMint", usdcMint)
	params.Set("outputMint", wsolMint)
	params.Set("amount", usdcAmount)
	params.Set("slippageBps", "50")

	resp, err := quoteHTTPClient.Get(quoteAPIBase + "?" + params.Encode())
	if err != nil {
		return 0, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	var quote QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return 0, fmt.Errorf("failed to decode quote response: %w", err)
	}

	lamports, err := strconv.ParseUint(quote.OutAmount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse out amount %q: %w", quote.OutAmount, err)
	}

	quoteCacheMu.Lock()
	quoteCache[usdcAmount] = cachedQuote{lamports: lamports, fetchedAt: time.Now()}
	quoteCacheMu.Unlock()

	return lamports, nil
}
