package region

import (
	"strconv"

	"github.com/google/uuid"
)

// splitNamespace scopes derived split ids.
var splitNamespace = uuid.MustParse("6f1c3a52-5b0e-4d5e-9a3c-1f8e2d7b4c90")

// NewID returns a fresh random region id.
func NewID() string {
	return uuid.NewString()
}

// deriveID returns a name-based id for a region produced from parent. The
// same parent, tag and time always give the same id; distinct inputs do
// not collide in practice.
func deriveID(parentID, tag string, at float64) string {
	name := parentID + "/" + tag + "/" + strconv.FormatFloat(at, 'g', -1, 64)
	return uuid.NewSHA1(splitNamespace, []byte(name)).String()
}
