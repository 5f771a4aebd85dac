// Package clients constructs the exchange SDK clients used by the live
// price sources. Public market data endpoints work with empty credentials.
package clients

import (
	"context"
	"crypto/ecdsa"

	"github.com/adshao/go-binance/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	hyperliquid "github.com/sonirico/go-hyperliquid"
)

// DefaultHyperliquidURL is the Hyperliquid mainnet API endpoint.
const DefaultHyperliquidURL = "https://api.hyperliquid.xyz"

// NewBinance returns a Binance REST client.
func NewBinance(apiKey, apiSecret string) *binance.Client {
	return binance.NewClient(apiKey, apiSecret)
}

// NewBybit returns a Bybit REST client.
func NewBybit(apiKey, apiSecret string) *bybit.Client {
	client := bybit.NewClient()
	if apiKey != "" {
		client = client.WithAuth(apiKey, apiSecret)
	}
	return client
}

// Hyperliquid wraps the SDK exchange handle together with the account
// address derived from the signing key.
type Hyperliquid struct {
	exchange    *hyperliquid.Exchange
	accountAddr string
}

// NewHyperliquid builds a Hyperliquid client from a hex-encoded private
// key. The SDK requires a signing key even for read paths routed through
// the exchange handle. Empty baseURL targets mainnet.
func NewHyperliquid(privateKeyHex, baseURL string) (*Hyperliquid, error) {
	key := privateKeyHex
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		key = key[2:]
	}

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse hyperliquid private key")
	}

	pub, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("derive public key from hyperliquid private key")
	}
	accountAddr := crypto.PubkeyToAddress(*pub).Hex()

	if baseURL == "" {
		baseURL = DefaultHyperliquidURL
	}

	ex := hyperliquid.NewExchange(
		context.Background(),
		privateKey,
		baseURL,
		nil,
		"",
		accountAddr,
		nil,
	)

	return &Hyperliquid{exchange: ex, accountAddr: accountAddr}, nil
}

// Exchange returns the underlying SDK handle.
func (h *Hyperliquid) Exchange() *hyperliquid.Exchange { return h.exchange }

// AccountAddress returns the address derived from the signing key.
func (h *Hyperliquid) AccountAddress() string { return h.accountAddr }
