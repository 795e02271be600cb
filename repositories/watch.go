package repositories

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// watchSignals turns a change stream into a coalescing signal channel: at most one
// pending signal is buffered, since readers re-query the full result set anyway.
func watchSignals(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) (<-chan struct{}, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			select {
			case signals <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("Change stream on %s ended: %v", coll.Name(), err)
		}
	}()
	return signals, nil
}
