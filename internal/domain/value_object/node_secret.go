package value_object

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeSecret is the token the directory issues on registration. Heartbeats
// are accepted only when they carry a known secret.
type NodeSecret struct {
	val uuid.UUID
}

func NewNodeSecret() NodeSecret { return NodeSecret{val: uuid.New()} }

func ParseNodeSecret(s string) (NodeSecret, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NodeSecret{}, err
	}
	if id.Version() != 4 {
		return NodeSecret{}, fmt.Errorf("node secret must be uuid v4, got v%d", id.Version())
	}
	return NodeSecret{val: id}, nil
}

func (s NodeSecret) String() string          { return s.val.String() }
func (s NodeSecret) IsZero() bool            { return s.val == uuid.Nil }
func (s NodeSecret) Equal(o NodeSecret) bool { return s.val == o.val }
