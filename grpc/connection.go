package grpc

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// GetGrpcConnection dials a node's gRPC endpoint. Endpoints on port 443, or with an https:// or grpcs://
// scheme, are dialed over TLS using the system roots; everything else is plaintext.
func GetGrpcConnection(grpcUri string) (*grpc.ClientConn, error) {
	target, useTls := parseTarget(grpcUri)
	if target == "" {
		return nil, fmt.Errorf("empty grpc endpoint")
	}

	transportCredentials := grpc.WithTransportCredentials(insecure.NewCredentials())
	if useTls {
		certPool, err := x509.SystemCertPool()
		if err != nil {
			certPool = x509.NewCertPool()
		}

		creds := credentials.NewTLS(&tls.Config{
			RootCAs:    certPool,
			MinVersion: tls.VersionTLS12,
		})
		transportCredentials = grpc.WithTransportCredentials(creds)
	}

	opts := []grpc.DialOption{
		transportCredentials,
	}

	return grpc.Dial(
		target,
		opts...,
	)
}

func parseTarget(grpcUri string) (string, bool) {
	target := strings.TrimSpace(grpcUri)
	useTls := false

	for _, scheme := range []string{"https://", "grpcs://"} {
		if strings.HasPrefix(target, scheme) {
			target = strings.TrimPrefix(target, scheme)
			useTls = true
		}
	}
	for _, scheme := range []string{"http://", "grpc://", "tcp://"} {
		target = strings.TrimPrefix(target, scheme)
	}
	target = strings.TrimSuffix(target, "/")

	if strings.HasSuffix(target, ":443") {
		useTls = true
	}
	return target, useTls
}
