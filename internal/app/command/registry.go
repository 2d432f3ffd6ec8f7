package command

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Spec describes a registered command: how it executes and what payload
// it accepts. A nil payload factory means the command takes no payload.
type Spec struct {
	Kind       Kind
	NewPayload func() any
}

var validate = validator.New()

// registry is the closed mapping from canonical command name to spec.
var registry = map[string]Spec{
	// Native commands.
	"play-media":        {KindNative, func() any { return &MediaPayload{} }},
	"prepare-media":     {KindNative, func() any { return &MediaPayload{} }},
	"reset-media":       {KindNative, nil},
	"stop-media":        {KindNative, nil},
	"pause":             {KindNative, nil},
	"seek-time":         {KindNative, func() any { return &SeekTimePayload{} }},
	"seek-position":     {KindNative, func() any { return &SeekPositionPayload{} }},
	"set-time":          {KindNative, func() any { return &SetTimePayload{} }},
	"set-position":      {KindNative, func() any { return &SetPositionPayload{} }},
	"set-loop":          {KindNative, func() any { return &SetLoopPayload{} }},
	"mute":              {KindNative, nil},
	"set-mute":          {KindNative, func() any { return &SetMutePayload{} }},
	"set-volume":        {KindNative, func() any { return &SetVolumePayload{} }},
	"set-channel":       {KindNative, func() any { return &SetChannelPayload{} }},
	"set-delay":         {KindNative, func() any { return &SetDelayPayload{} }},
	"set-equalizer":     {KindNative, func() any { return &SetEqualizerPayload{} }},
	"set-output":        {KindNative, func() any { return &SetOutputPayload{} }},
	"set-output-device": {KindNative, func() any { return &SetOutputDevicePayload{} }},

	// Porcelain commands.
	"play":           {KindPorcelain, nil},
	"stop":           {KindPorcelain, nil},
	"advance":        {KindPorcelain, nil},
	"next":           {KindPorcelain, nil},
	"previous":       {KindPorcelain, nil},
	"append":         {KindPorcelain, func() any { return &MRLsPayload{} }},
	"add-next":       {KindPorcelain, func() any { return &MRLsPayload{} }},
	"insert-at":      {KindPorcelain, func() any { return &IndexedMRLsPayload{} }},
	"replace-at":     {KindPorcelain, func() any { return &IndexedMRLsPayload{} }},
	"remove-at":      {KindPorcelain, func() any { return &IndicesPayload{} }},
	"move":           {KindPorcelain, func() any { return &MovePayload{} }},
	"play-from":      {KindPorcelain, func() any { return &IndexPayload{} }},
	"set-shuffle":    {KindPorcelain, func() any { return &SetShufflePayload{} }},
	"set-repeat":     {KindPorcelain, func() any { return &SetRepeatPayload{} }},
	"clear-upcoming": {KindPorcelain, nil},
	"clear-all":      {KindPorcelain, nil},
}

// aliases maps convenience names to canonical command names.
var aliases = map[string]string{
	"next-track":     "next",
	"previous-track": "previous",
	"prev":           "previous",
	"skip":           "next",
	"enqueue":        "append",
	"play-next":      "add-next",
	"volume":         "set-volume",
	"seek":           "seek-time",
	"goto":           "play-from",
	"shuffle":        "set-shuffle",
	"repeat":         "set-repeat",
}

// ResolveAlias rewrites an alias into its canonical command name. Names
// that are not aliases pass through unchanged.
func ResolveAlias(name string) string {
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// Lookup returns the spec for a command name, resolving aliases first.
func Lookup(name string) (Spec, bool) {
	sp, ok := registry[ResolveAlias(name)]
	return sp, ok
}

// Names returns all canonical command names, sorted.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}

// Validate checks that the command name is registered and its payload
// matches the schema exactly. Unknown and extra payload fields are
// rejected.
func Validate(cmd Command) error {
	name := ResolveAlias(cmd.Name)
	sp, ok := registry[name]
	if !ok {
		return errors.Wrapf(ErrUnknownCommand, "%q", cmd.Name)
	}
	if sp.NewPayload == nil {
		if len(cmd.Payload) > 0 {
			return errors.Wrapf(ErrInvalidPayload,
				"command %q takes no payload, got fields %v", name, lo.Keys(cmd.Payload))
		}
		return nil
	}
	return decodeInto(cmd, sp.NewPayload())
}

// Payload decodes and validates the command payload into the typed
// schema T.
func Payload[T any](cmd Command) (T, error) {
	var dst T
	err := decodeInto(cmd, &dst)
	return dst, err
}

func decodeInto(cmd Command, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      dst,
		ErrorUnused: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build payload decoder")
	}
	if err := dec.Decode(cmd.Payload); err != nil {
		return errors.Wrapf(ErrInvalidPayload, "command %q: %v", cmd.Name, err)
	}
	if err := validate.Struct(dst); err != nil {
		return errors.Wrapf(ErrInvalidPayload, "command %q: %v", cmd.Name, err)
	}
	return nil
}
