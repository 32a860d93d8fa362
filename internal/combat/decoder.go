// Package combat decodes BPSR combat Notify frames into schema-interpreted
// records by dispatching on method_id against a protobuf descriptor bundle
// supplied by the caller at construction time.
package combat

import (
	"fmt"
	"os"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jordieb/bpsr-labs-go/internal/framing"
)

// ServiceUID is the only service this decoder recognizes; frames addressed
// to any other service yield no record.
const ServiceUID uint64 = 0x0000000063335342

// methodToMessageType maps a Notify's method_id to the fully qualified
// protobuf message type name it carries. Unlisted method ids are not errors;
// they are simply frames this decoder does not interpret.
var methodToMessageType = map[uint32]protoreflect.FullName{
	0x00000006: "blueprotobuf_package.SyncNearEntities",
	0x00000015: "blueprotobuf_package.SyncContainerData",
	0x00000016: "blueprotobuf_package.SyncContainerDirtyData",
	0x0000002B: "blueprotobuf_package.SyncServerTime",
	0x0000002D: "blueprotobuf_package.SyncNearDeltaInfo",
	0x0000002E: "blueprotobuf_package.SyncToMeDeltaInfo",
}

// DecodedRecord is a schema-interpreted Notify: a flat, JSON-friendly view of
// a dynamically parsed protobuf message.
type DecodedRecord struct {
	ServiceUID  string                 `json:"service_uid"`
	StubID      uint32                 `json:"stub_id"`
	MethodID    uint32                 `json:"method_id"`
	MessageType string                 `json:"message_type"`
	Data        map[string]interface{} `json:"data"`
}

// Decoder resolves Notify frames into DecodedRecords using a descriptor pool
// loaded once at construction. It holds no mutable state after construction
// and is safe to share across goroutines (read-only use).
type Decoder struct {
	files *protoregistry.Files
}

// NewDecoderFromFile loads a serialized descriptorpb.FileDescriptorSet from
// path. The descriptor set is treated as opaque configuration: this package
// never generates or embeds message stubs, only interprets the bundle at
// runtime via protodesc/dynamicpb.
func NewDecoderFromFile(path string) (*Decoder, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("combat: reading descriptor set %s: %w", path, err)
	}
	return NewDecoderFromDescriptorSet(raw)
}

// NewDecoderFromDescriptorSet builds a Decoder from an already-read,
// serialized descriptorpb.FileDescriptorSet.
func NewDecoderFromDescriptorSet(raw []byte) (*Decoder, error) {
	var fdSet descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &fdSet); err != nil {
		return nil, fmt.Errorf("combat: parsing descriptor set: %w", err)
	}
	files, err := protodesc.NewFiles(&fdSet)
	if err != nil {
		return nil, fmt.Errorf("combat: building descriptor pool: %w", err)
	}
	return &Decoder{files: files}, nil
}

// Decode interprets one NotifyFrame. It returns (nil, false) - never an error
// - for frames outside the recognized service, an unrecognized method id, or
// a payload that fails to parse as the expected message type: per spec, a
// schema miss or a proto parse error is a local, silent skip, not a fatal
// condition. The frame has already been consumed by the framer regardless.
func (d *Decoder) Decode(nf *framing.NotifyFrame) (*DecodedRecord, bool) {
	if nf.ServiceUID != ServiceUID {
		return nil, false
	}
	msgType, known := methodToMessageType[nf.MethodID]
	if !known {
		return nil, false
	}

	desc, err := d.files.FindDescriptorByName(msgType)
	if err != nil {
		return nil, false
	}
	msgDesc, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, false
	}

	msg := dynamicpb.NewMessage(msgDesc)
	if err := proto.Unmarshal(nf.Payload, msg); err != nil {
		return nil, false
	}

	return &DecodedRecord{
		ServiceUID:  fmt.Sprintf("0x%016x", nf.ServiceUID),
		StubID:      nf.StubID,
		MethodID:    nf.MethodID,
		MessageType: string(msgType),
		Data:        messageToMap(msg),
	}, true
}

// messageToMap projects a dynamic message into a field-name-keyed tree of
// scalars, maps and slices, suitable for direct json.Marshal. Enum values are
// rendered as their symbolic name (falling back to the raw number if the
// descriptor has no matching value) so downstream consumers - in particular
// the combat reducer - can match on string literals like
// "E_DAMAGE_TYPE_HEAL" regardless of wire representation.
func messageToMap(msg protoreflect.Message) map[string]interface{} {
	out := make(map[string]interface{})
	msg.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		out[string(fd.Name())] = fieldValueToAny(fd, v)
		return true
	})
	return out
}

func fieldValueToAny(fd protoreflect.FieldDescriptor, v protoreflect.Value) interface{} {
	switch {
	case fd.IsMap():
		m := make(map[string]interface{})
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			m[k.String()] = scalarOrMessage(fd.MapValue(), mv)
			return true
		})
		return m
	case fd.IsList():
		list := v.List()
		out := make([]interface{}, 0, list.Len())
		for i := 0; i < list.Len(); i++ {
			out = append(out, scalarOrMessage(fd, list.Get(i)))
		}
		return out
	default:
		return scalarOrMessage(fd, v)
	}
}

// sixtyFourBitKinds are the proto3 field kinds the canonical JSON mapping
// renders as decimal strings rather than bare numbers, since a JSON number
// cannot losslessly carry a full 64-bit integer. json_format.MessageToDict
// (the Python original's projection, per SPEC_FULL.md §4.3/§9's "Integer
// tolerance" design note) does the same; internal/reduce's tolerant int
// parser exists specifically to accept the resulting strings.
var sixtyFourBitKinds = map[protoreflect.Kind]bool{
	protoreflect.Int64Kind:    true,
	protoreflect.Uint64Kind:   true,
	protoreflect.Sint64Kind:   true,
	protoreflect.Fixed64Kind:  true,
	protoreflect.Sfixed64Kind: true,
}

func scalarOrMessage(fd protoreflect.FieldDescriptor, v protoreflect.Value) interface{} {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return messageToMap(v.Message())
	case protoreflect.EnumKind:
		num := v.Enum()
		if ev := fd.Enum().Values().ByNumber(num); ev != nil {
			return string(ev.Name())
		}
		return int32(num)
	case protoreflect.BytesKind:
		return v.Bytes()
	default:
		if sixtyFourBitKinds[fd.Kind()] {
			return stringify64(fd.Kind(), v)
		}
		return v.Interface()
	}
}

// stringify64 renders a 64-bit integer field as its decimal string form,
// matching the canonical proto3 JSON mapping. Signed kinds read through
// v.Int(), unsigned kinds through v.Uint() - calling the wrong accessor on a
// protoreflect.Value panics, so the kind must select the accessor.
func stringify64(kind protoreflect.Kind, v protoreflect.Value) string {
	switch kind {
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return strconv.FormatInt(v.Int(), 10)
	}
}
