package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bangjelkoski/injective-dexly/crypto"
	"github.com/bangjelkoski/injective-dexly/log"
	"github.com/bangjelkoski/injective-dexly/txerrors"
)

const (
	accountPath     = "/cosmos/auth/v1beta1/accounts/%s"
	latestBlockPath = "/cosmos/base/tendermint/v1beta1/blocks/latest"

	defaultRequestTimeout = 15 * time.Second
)

// restClient reads chain state over the node's REST (LCD) API. Nothing is retried: callers re-invoke for a new attempt.
type restClient struct {
	baseUrl    string
	httpClient *http.Client

	log *log.Logger
}

// Ensure that restClient implements StateClient
var _ StateClient = (*restClient)(nil)

// NewRestClient makes a new StateClient backed by a REST endpoint.
func NewRestClient(restUrl string, log *log.Logger) StateClient {
	return NewRestClientWithHttpClient(restUrl, &http.Client{Timeout: defaultRequestTimeout}, log)
}

// NewRestClientWithHttpClient makes a new StateClient using the given http client.
func NewRestClientWithHttpClient(restUrl string, httpClient *http.Client, log *log.Logger) StateClient {
	return &restClient{
		baseUrl:    strings.TrimSuffix(restUrl, "/"),
		httpClient: httpClient,

		log: log,
	}
}

// Response shapes

type baseAccount struct {
	Address       string `json:"address"`
	AccountNumber string `json:"account_number"`
	Sequence      string `json:"sequence"`
}

// Covers both a plain BaseAccount and an EthAccount, which nests the base account.
type accountResponse struct {
	Account struct {
		baseAccount
		BaseAccount *baseAccount `json:"base_account"`
	} `json:"account"`
}

type blockHeader struct {
	Header struct {
		Height string `json:"height"`
	} `json:"header"`
}

type latestBlockResponse struct {
	Block    *blockHeader `json:"block"`
	SdkBlock *blockHeader `json:"sdk_block"`
}

// StateClient interface

func (rc *restClient) Account(ctx context.Context, address string) (*Account, error) {
	ethereumAddress, err := crypto.EthereumAddressFromBech32(address)
	if err != nil {
		return nil, txerrors.Encoding("address", err)
	}

	url := rc.baseUrl + fmt.Sprintf(accountPath, address)
	bytes, err := rc.makeRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var response accountResponse
	if err := json.Unmarshal(bytes, &response); err != nil {
		return nil, txerrors.Network(url, fmt.Errorf("malformed account response: %w", err))
	}

	account := &response.Account.baseAccount
	if response.Account.BaseAccount != nil {
		account = response.Account.BaseAccount
	}

	accountNumber, err := parseUint("account_number", account.AccountNumber)
	if err != nil {
		return nil, txerrors.Network(url, err)
	}
	sequence, err := parseUint("sequence", account.Sequence)
	if err != nil {
		return nil, txerrors.Network(url, err)
	}

	rc.log.Debug("fetched account", "address", address, "account_number", accountNumber, "sequence", sequence)

	return &Account{
		Address:         address,
		EthereumAddress: ethereumAddress,
		AccountNumber:   accountNumber,
		Sequence:        sequence,
	}, nil
}

func (rc *restClient) LatestHeight(ctx context.Context) (*ChainTip, error) {
	url := rc.baseUrl + latestBlockPath
	bytes, err := rc.makeRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var response latestBlockResponse
	if err := json.Unmarshal(bytes, &response); err != nil {
		return nil, txerrors.Network(url, fmt.Errorf("malformed block response: %w", err))
	}

	block := response.SdkBlock
	if block == nil {
		block = response.Block
	}
	if block == nil {
		return nil, txerrors.Network(url, fmt.Errorf("response has no block"))
	}

	height, err := parseUint("height", block.Header.Height)
	if err != nil {
		return nil, txerrors.Network(url, err)
	}

	rc.log.Debug("fetched latest block", "height", height)
	return &ChainTip{Height: height}, nil
}

// Private helpers

func (rc *restClient) makeRequest(ctx context.Context, url string) ([]byte, error) {
	rc.log.Debug("making GET request to url", "url", url)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, txerrors.Network(url, err)
	}
	request.Header.Set("Accept", "application/json")

	resp, err := rc.httpClient.Do(request)
	if err != nil {
		return nil, txerrors.Network(url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, txerrors.Network(url, err)
	}

	if resp.StatusCode != http.StatusOK {
		rc.log.Debug("received bad response from node", "response", string(data), "status_code", resp.StatusCode)
		return nil, txerrors.Network(url, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode))
	}
	return data, nil
}

func parseUint(field, value string) (uint64, error) {
	if value == "" {
		return 0, fmt.Errorf("missing %s", field)
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed %s %q: %w", field, value, err)
	}
	return parsed, nil
}
