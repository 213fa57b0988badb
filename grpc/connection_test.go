package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		input  string
		target string
		tls    bool
	}{
		{"localhost:9900", "localhost:9900", false},
		{"grpc://localhost:9900/", "localhost:9900", false},
		{"sentry.chain.grpc.injective.network:443", "sentry.chain.grpc.injective.network:443", true},
		{"https://k8s.testnet.chain.grpc.injective.network", "k8s.testnet.chain.grpc.injective.network", true},
		{"  ", "", false},
	}

	for _, c := range cases {
		target, useTls := parseTarget(c.input)
		assert.Equal(t, c.target, target, c.input)
		assert.Equal(t, c.tls, useTls, c.input)
	}
}

func TestGetGrpcConnectionRejectsEmptyEndpoint(t *testing.T) {
	_, err := GetGrpcConnection("")
	assert.Error(t, err)
}
