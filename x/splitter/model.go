package splitter

import (
	"fmt"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/coin"
	"github.com/okatau/tsm/errors"
	"github.com/okatau/tsm/orm"
)

const (
	// RecipientAddress streams pay directly to an address.
	RecipientAddress = "address"
	// RecipientAllocator streams credit a cascade allocator.
	RecipientAllocator = "allocator"

	// maxStreams bounds the streams of one splitter. With uint32 weights
	// the weight sum always fits in 64 bits.
	maxStreams = 200
)

// Recipient is either an address or an allocator.
type Recipient struct {
	Kind        string      `json:"kind"`
	Address     tsm.Address `json:"address,omitempty"`
	AllocatorID []byte      `json:"allocator_id,omitempty"`
}

// AddressRecipient returns a recipient paying to the address.
func AddressRecipient(a tsm.Address) Recipient {
	return Recipient{Kind: RecipientAddress, Address: a}
}

// AllocatorRecipient returns a recipient crediting the allocator.
func AllocatorRecipient(id []byte) Recipient {
	return Recipient{Kind: RecipientAllocator, AllocatorID: id}
}

// Validate ensures exactly one kind of destination is set.
func (r Recipient) Validate() error {
	switch r.Kind {
	case RecipientAddress:
		if len(r.AllocatorID) != 0 {
			return errors.Wrap(errors.ErrInput, "address recipient with allocator")
		}
		return errors.Wrap(r.Address.Validate(), "address")
	case RecipientAllocator:
		if len(r.Address) != 0 {
			return errors.Wrap(errors.ErrInput, "allocator recipient with address")
		}
		return errors.Wrap(orm.ValidateSequence(r.AllocatorID), "allocator")
	default:
		return errors.Wrapf(errors.ErrType, "unknown recipient kind %q", r.Kind)
	}
}

func (r Recipient) String() string {
	if r.Kind == RecipientAllocator {
		return fmt.Sprintf("allocator:%X", r.AllocatorID)
	}
	return r.Address.String()
}

// Stream is a weighted output of a splitter.
type Stream struct {
	Recipient Recipient `json:"recipient"`
	// Weight is the share of this stream relative to the sum of all
	// weights. Zero weight streams receive nothing.
	Weight uint32 `json:"weight"`
}

// validateStreams returns an error if given list of streams is not
// valid. It is used by both models and messages.
func validateStreams(streams []Stream) error {
	if len(streams) > maxStreams {
		return errors.Wrapf(errors.ErrInput, "more than %d streams", maxStreams)
	}

	// Each recipient appears at most once.
	seen := make(map[string]struct{}, len(streams))
	for i, s := range streams {
		if err := s.Recipient.Validate(); err != nil {
			return errors.Wrapf(err, "stream %d", i)
		}
		key := s.Recipient.String()
		if _, ok := seen[key]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "recipient %s is not unique", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// totalWeight returns the sum of all stream weights.
func totalWeight(streams []Stream) coin.Amount {
	var w uint64
	for _, s := range streams {
		w += uint64(s.Weight)
	}
	return coin.NewAmount(w)
}

// Splitter divides its funds between weighted streams.
type Splitter struct {
	Admin   tsm.Address  `json:"admin"`
	Assets  []coin.Asset `json:"assets"`
	Streams []Stream     `json:"streams"`
	Address tsm.Address  `json:"address"`
}

var _ orm.Model = (*Splitter)(nil)

// Validate ensures the splitter is in a consistent state.
func (s *Splitter) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", s.Admin.Validate())
	errs = errors.AppendField(errs, "Assets", coin.ValidateAssets(s.Assets))
	errs = errors.AppendField(errs, "Streams", validateStreams(s.Streams))
	errs = errors.AppendField(errs, "Address", s.Address.Validate())
	return errs
}

// SplitterAddress returns the address holding the funds of a splitter.
func SplitterAddress(id []byte) tsm.Address {
	return tsm.NewCondition("splitter", "valve", id).Address()
}

var splitterSeq = orm.NewSequence("splitter", orm.SeqID)

// NewBucket returns a bucket for managing splitters.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("splitter", &Splitter{})
}
