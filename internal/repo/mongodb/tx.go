package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner wraps a function in a mongo multi-document transaction. The
// callback context carries the session, so repository calls made with it
// join the transaction and either all commit or all abort. This is what
// keeps Place.creator and User.places consistent under concurrent reads.
type TxRunner struct {
	client *mongo.Client
}

func NewTxRunner(client *mongo.Client) *TxRunner {
	return &TxRunner{client: client}
}

func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()

	if err != nil {
		return err
	}

	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}
