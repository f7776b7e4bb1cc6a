package types

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/xerrors"
)

// Account is the opaque identifier of a participant.
type Account string

// DeliveryIDLen is the length in bytes of a delivery identifier.
const DeliveryIDLen = sha256.Size

// DeliveryID is the identifier of a delivery request. It is the hash of the
// delivery details that are kept outside of the ledger.
type DeliveryID [DeliveryIDLen]byte

// HashDeliveryDetails returns the identifier of the delivery details.
func HashDeliveryDetails(details string) DeliveryID {
	return DeliveryID(sha256.Sum256([]byte(details)))
}

// ParseDeliveryID parses the hexadecimal representation of an identifier.
func ParseDeliveryID(value string) (DeliveryID, error) {
	var id DeliveryID

	buf, err := hex.DecodeString(value)
	if err != nil {
		return id, xerrors.Errorf("invalid delivery id: %v", err)
	}

	if len(buf) != DeliveryIDLen {
		return id, xerrors.Errorf("invalid delivery id length %d != %d",
			len(buf), DeliveryIDLen)
	}

	copy(id[:], buf)

	return id, nil
}

// String returns the hexadecimal representation of the identifier.
func (id DeliveryID) String() string {
	return hex.EncodeToString(id[:])
}
