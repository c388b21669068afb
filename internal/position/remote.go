package position

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dgallion1/slidedeck/internal/pathstore"
)

const remotePrefix = "deck/position/"

// RemoteStore keeps values in a pathstore service so views on different
// machines can follow the same presentation. It has no change notification.
type RemoteStore struct {
	client *pathstore.Client
}

func NewRemoteStore(client *pathstore.Client) *RemoteStore {
	return &RemoteStore{client: client}
}

func (r *RemoteStore) Get(ctx context.Context, key string) (string, bool, error) {
	node, err := r.client.GetNode(ctx, remotePrefix+key)
	if err != nil {
		return "", false, err
	}
	if node == nil {
		return "", false, nil
	}
	switch v := node.Value.(type) {
	case string:
		return v, true, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true, nil
	case nil:
		return "", false, nil
	default:
		return fmt.Sprint(v), true, nil
	}
}

func (r *RemoteStore) Set(ctx context.Context, key, value string) error {
	return r.client.PutNode(ctx, remotePrefix+key, pathstore.NodeRequest{
		Value:  value,
		Source: "slidedeck",
	})
}

func (r *RemoteStore) Subscribe(string, func(string)) func() {
	return func() {}
}

func (r *RemoteStore) Close() error {
	r.client.Close()
	return nil
}
