package rpc

import (
	"context"

	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"google.golang.org/grpc"

	dexlygrpc "github.com/bangjelkoski/injective-dexly/grpc"
	"github.com/bangjelkoski/injective-dexly/log"
)

// grpcTxClient is the default TxClient, talking to cosmos.tx.v1beta1.Service.
type grpcTxClient struct {
	conn     *grpc.ClientConn
	txClient txtypes.ServiceClient

	log *log.Logger
}

// Ensure that grpcTxClient implements TxClient
var _ TxClient = (*grpcTxClient)(nil)

// NewGrpcTxClient dials the node and returns a TxClient. Close releases the connection.
func NewGrpcTxClient(nodeGrpcUri string, log *log.Logger) (*grpcTxClient, error) {
	conn, err := dexlygrpc.GetGrpcConnection(nodeGrpcUri)
	if err != nil {
		log.Error("Unable to connect to gRPC", "grpc_url", nodeGrpcUri, "error", err)
		return nil, err
	}

	return &grpcTxClient{
		conn:     conn,
		txClient: txtypes.NewServiceClient(conn),

		log: log,
	}, nil
}

// Broadcast submits txBytes in SYNC mode: the node runs CheckTx and responds without waiting for inclusion.
func (r *grpcTxClient) Broadcast(
	ctx context.Context,
	txBytes []byte,
) (*txtypes.BroadcastTxResponse, error) {
	// Form a query
	query := &txtypes.BroadcastTxRequest{
		Mode:    txtypes.BroadcastMode_BROADCAST_MODE_SYNC,
		TxBytes: txBytes,
	}

	// Send tx
	return r.txClient.BroadcastTx(
		ctx,
		query,
	)
}

func (r *grpcTxClient) Close() error {
	return r.conn.Close()
}
