package command

// Payload schemas. Schemas are closed: decoding rejects unknown fields,
// and required scalar fields use pointers so an explicit zero value still
// satisfies the required check.

// MediaPayload targets a single media resource.
type MediaPayload struct {
	MRL string `mapstructure:"mrl" validate:"required"`
}

// MRLsPayload carries a batch of media locators for queue insertion.
type MRLsPayload struct {
	MRLs []string `mapstructure:"mrls" validate:"required,min=1,dive,required"`
}

// IndexedMRLsPayload carries media locators plus a unified queue index.
type IndexedMRLsPayload struct {
	Index *int     `mapstructure:"index" validate:"required"`
	MRLs  []string `mapstructure:"mrls" validate:"required,min=1,dive,required"`
}

// IndexPayload addresses a single unified queue index.
type IndexPayload struct {
	Index *int `mapstructure:"index" validate:"required"`
}

// IndicesPayload addresses a set of unified queue indices.
type IndicesPayload struct {
	Indices []int `mapstructure:"indices" validate:"required,min=1"`
}

// MovePayload relocates a track between two unified queue indices.
type MovePayload struct {
	From *int `mapstructure:"from" validate:"required"`
	To   *int `mapstructure:"to" validate:"required"`
}

// SeekTimePayload seeks by a signed time offset.
type SeekTimePayload struct {
	OffsetMs *int64 `mapstructure:"offset_ms" validate:"required"`
}

// SeekPositionPayload seeks by a signed fractional position offset.
type SeekPositionPayload struct {
	Offset *float64 `mapstructure:"offset" validate:"required,gte=-1,lte=1"`
}

// SetTimePayload sets the absolute playback time.
type SetTimePayload struct {
	TimeMs *int64 `mapstructure:"time_ms" validate:"required,gte=0"`
}

// SetPositionPayload sets the absolute fractional playback position.
type SetPositionPayload struct {
	Position *float64 `mapstructure:"position" validate:"required,gte=0,lte=1"`
}

// SetLoopPayload toggles engine-level media looping.
type SetLoopPayload struct {
	Loop *bool `mapstructure:"loop" validate:"required"`
}

// SetMutePayload sets the mute state explicitly.
type SetMutePayload struct {
	Mute *bool `mapstructure:"mute" validate:"required"`
}

// SetVolumePayload sets the software volume.
type SetVolumePayload struct {
	Volume *int `mapstructure:"volume" validate:"required,gte=0,lte=125"`
}

// SetChannelPayload selects the audio channel layout.
type SetChannelPayload struct {
	Channel string `mapstructure:"channel" validate:"required,oneof=stereo rstereo left right dolbys"`
}

// SetDelayPayload sets the audio delay.
type SetDelayPayload struct {
	DelayMs *int64 `mapstructure:"delay_ms" validate:"required"`
}

// SetEqualizerPayload selects an equalizer preset.
type SetEqualizerPayload struct {
	Preset string `mapstructure:"preset" validate:"required"`
}

// SetOutputPayload selects the audio output module.
type SetOutputPayload struct {
	Output string `mapstructure:"output" validate:"required"`
}

// SetOutputDevicePayload selects a device on the active output module.
type SetOutputDevicePayload struct {
	Device string `mapstructure:"device" validate:"required"`
}

// SetShufflePayload sets the queue shuffle flag.
type SetShufflePayload struct {
	Shuffle *bool `mapstructure:"shuffle" validate:"required"`
}

// SetRepeatPayload sets the queue repeat mode.
type SetRepeatPayload struct {
	Mode string `mapstructure:"mode" validate:"required,oneof=none track list"`
}
