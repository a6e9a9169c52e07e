// Package hda builds audio mixers for High Definition Audio codecs, modeled after the azalia driver.
//
// A codec is reached through a Transport (the Linux hwdep interface or the
// bundled Simulator), its widget graph is discovered, converters are grouped
// into channel configurations and a mixer control table is synthesized from
// the widget capabilities. Per-chip overrides are selected by vendor id.
package hda

// Codec verbs.
// These values correspond to the AC_VERB_* constants in the kernel hda_verbs.h header.
const (
	// 4-bit verbs carrying a 16-bit payload.
	AC_VERB_GET_STREAM_FORMAT uint32 = 0x0a00
	AC_VERB_GET_AMP_GAIN_MUTE uint32 = 0x0b00
	AC_VERB_SET_STREAM_FORMAT uint32 = 0x0200
	AC_VERB_SET_AMP_GAIN_MUTE uint32 = 0x0300

	// 12-bit verbs carrying an 8-bit payload.
	AC_VERB_PARAMETERS               uint32 = 0x0f00
	AC_VERB_GET_CONNECT_SEL          uint32 = 0x0f01
	AC_VERB_GET_CONNECT_LIST         uint32 = 0x0f02
	AC_VERB_GET_POWER_STATE          uint32 = 0x0f05
	AC_VERB_GET_PIN_WIDGET_CONTROL   uint32 = 0x0f07
	AC_VERB_GET_UNSOLICITED_RESPONSE uint32 = 0x0f08
	AC_VERB_GET_PIN_SENSE            uint32 = 0x0f09
	AC_VERB_GET_EAPD_BTLENABLE       uint32 = 0x0f0c
	AC_VERB_GET_DIGI_CONVERT_1       uint32 = 0x0f0d
	AC_VERB_GET_VOLUME_KNOB_CONTROL  uint32 = 0x0f0f
	AC_VERB_GET_GPIO_DATA            uint32 = 0x0f15
	AC_VERB_GET_GPIO_MASK            uint32 = 0x0f16
	AC_VERB_GET_GPIO_DIRECTION       uint32 = 0x0f17
	AC_VERB_GET_CONFIG_DEFAULT       uint32 = 0x0f1c
	AC_VERB_GET_SUBSYSTEM_ID         uint32 = 0x0f20

	AC_VERB_SET_CONNECT_SEL          uint32 = 0x0701
	AC_VERB_SET_POWER_STATE          uint32 = 0x0705
	AC_VERB_SET_PIN_WIDGET_CONTROL   uint32 = 0x0707
	AC_VERB_SET_UNSOLICITED_ENABLE   uint32 = 0x0708
	AC_VERB_SET_EAPD_BTLENABLE       uint32 = 0x070c
	AC_VERB_SET_DIGI_CONVERT_1       uint32 = 0x070d
	AC_VERB_SET_DIGI_CONVERT_2       uint32 = 0x070e
	AC_VERB_SET_VOLUME_KNOB_CONTROL  uint32 = 0x070f
	AC_VERB_SET_GPIO_DATA            uint32 = 0x0715
	AC_VERB_SET_GPIO_MASK            uint32 = 0x0716
	AC_VERB_SET_GPIO_DIRECTION       uint32 = 0x0717
)

// Parameter ids for AC_VERB_PARAMETERS.
const (
	AC_PAR_VENDOR_ID        uint32 = 0x00
	AC_PAR_SUBSYSTEM_ID     uint32 = 0x01
	AC_PAR_REV_ID           uint32 = 0x02
	AC_PAR_NODE_COUNT       uint32 = 0x04
	AC_PAR_FUNCTION_TYPE    uint32 = 0x05
	AC_PAR_AUDIO_FG_CAP     uint32 = 0x08
	AC_PAR_AUDIO_WIDGET_CAP uint32 = 0x09
	AC_PAR_PCM              uint32 = 0x0a
	AC_PAR_STREAM           uint32 = 0x0b
	AC_PAR_PIN_CAP          uint32 = 0x0c
	AC_PAR_AMP_IN_CAP       uint32 = 0x0d
	AC_PAR_CONNLIST_LEN     uint32 = 0x0e
	AC_PAR_POWER_STATE      uint32 = 0x0f
	AC_PAR_GPIO_CAP         uint32 = 0x11
	AC_PAR_AMP_OUT_CAP      uint32 = 0x12
	AC_PAR_VOL_KNB_CAP      uint32 = 0x13
)

// Function group types and node count fields.
const (
	AC_GRP_AUDIO_FUNCTION uint32 = 0x01
	AC_GRP_MODEM_FUNCTION uint32 = 0x02

	AC_NODE_COUNT_MASK  uint32 = 0xff
	AC_NODE_START_SHIFT        = 16
)

// Audio widget capabilities.
const (
	AC_WCAP_STEREO      uint32 = 1 << 0
	AC_WCAP_IN_AMP      uint32 = 1 << 1
	AC_WCAP_OUT_AMP     uint32 = 1 << 2
	AC_WCAP_AMP_OVRD    uint32 = 1 << 3
	AC_WCAP_FORMAT_OVRD uint32 = 1 << 4
	AC_WCAP_STRIPE      uint32 = 1 << 5
	AC_WCAP_PROC_WID    uint32 = 1 << 6
	AC_WCAP_UNSOL_CAP   uint32 = 1 << 7
	AC_WCAP_CONN_LIST   uint32 = 1 << 8
	AC_WCAP_DIGITAL     uint32 = 1 << 9
	AC_WCAP_POWER       uint32 = 1 << 10
	AC_WCAP_LR_SWAP     uint32 = 1 << 11

	AC_WCAP_TYPE_SHIFT        = 20
	AC_WCAP_TYPE_MASK  uint32 = 0xf << AC_WCAP_TYPE_SHIFT
)

// Amplifier capabilities.
const (
	AC_AMPCAP_OFFSET     uint32 = 0x7f
	AC_AMPCAP_NUM_STEPS  uint32 = 0x7f << 8
	AC_AMPCAP_STEP_SIZE  uint32 = 0x7f << 16
	AC_AMPCAP_MUTE       uint32 = 1 << 31
	AC_AMPCAP_STEPS_SHIFT       = 8
	AC_AMPCAP_SIZE_SHIFT        = 16
)

// Amplifier gain/mute payload bits.
const (
	AC_AMP_GET_OUTPUT uint32 = 1 << 15
	AC_AMP_GET_INPUT  uint32 = 0
	AC_AMP_GET_LEFT   uint32 = 1 << 13
	AC_AMP_GET_RIGHT  uint32 = 0

	AC_AMP_SET_OUTPUT      uint32 = 1 << 15
	AC_AMP_SET_INPUT       uint32 = 1 << 14
	AC_AMP_SET_LEFT        uint32 = 1 << 13
	AC_AMP_SET_RIGHT       uint32 = 1 << 12
	AC_AMP_SET_INDEX_SHIFT        = 8

	AC_AMP_MUTE      uint32 = 0x80
	AC_AMP_GAIN_MASK uint32 = 0x7f
)

// Pin capabilities.
const (
	AC_PINCAP_IMP_SENSE   uint32 = 1 << 0
	AC_PINCAP_TRIG_REQ    uint32 = 1 << 1
	AC_PINCAP_PRES_DETECT uint32 = 1 << 2
	AC_PINCAP_HP_DRV      uint32 = 1 << 3
	AC_PINCAP_OUT         uint32 = 1 << 4
	AC_PINCAP_IN          uint32 = 1 << 5
	AC_PINCAP_BALANCE     uint32 = 1 << 6
	AC_PINCAP_HDMI        uint32 = 1 << 7
	AC_PINCAP_VREF_80     uint32 = 1 << 12
	AC_PINCAP_EAPD        uint32 = 1 << 16
)

// Pin widget control bits.
const (
	AC_PINCTL_VREFEN  uint32 = 0x07
	AC_PINCTL_VREF_80 uint32 = 0x04
	AC_PINCTL_IN_EN   uint32 = 1 << 5
	AC_PINCTL_OUT_EN  uint32 = 1 << 6
	AC_PINCTL_HP_EN   uint32 = 1 << 7
)

// Pin sense, unsolicited response and EAPD/BTL register bits.
const (
	AC_PINSENSE_PRESENCE uint32 = 1 << 31

	AC_USRSP_EN  uint32 = 1 << 7
	AC_UNSOL_TAG_SHIFT  = 26

	AC_EAPDBTL_BALANCED uint32 = 1 << 0
	AC_EAPDBTL_EAPD     uint32 = 1 << 1
	AC_EAPDBTL_LR_SWAP  uint32 = 1 << 2
)

// Digital converter control bits.
const (
	AC_DIG1_ENABLE       uint32 = 1 << 0
	AC_DIG1_V            uint32 = 1 << 1
	AC_DIG1_VCFG         uint32 = 1 << 2
	AC_DIG1_EMPHASIS     uint32 = 1 << 3
	AC_DIG1_COPYRIGHT    uint32 = 1 << 4
	AC_DIG1_NONAUDIO     uint32 = 1 << 5
	AC_DIG1_PROFESSIONAL uint32 = 1 << 6
	AC_DIG1_LEVEL        uint32 = 1 << 7

	AC_DIG2_CC_SHIFT        = 8
	AC_DIG2_CC_MASK  uint32 = 0x7f
)

// Volume knob.
const (
	AC_KNBCAP_NUM_STEPS uint32 = 0x7f
	AC_KNBCAP_DELTA     uint32 = 1 << 7

	AC_KNB_DIRECT      uint32 = 1 << 7
	AC_KNB_VOLUME_MASK uint32 = 0x7f
)

// Pin configuration default fields.
const (
	AC_DEFCFG_SEQUENCE       uint32 = 0xf << 0
	AC_DEFCFG_DEF_ASSOC      uint32 = 0xf << 4
	AC_DEFCFG_MISC           uint32 = 0xf << 8
	AC_DEFCFG_COLOR          uint32 = 0xf << 12
	AC_DEFCFG_CONN_TYPE      uint32 = 0xf << 16
	AC_DEFCFG_DEVICE         uint32 = 0xf << 20
	AC_DEFCFG_LOCATION       uint32 = 0x3f << 24
	AC_DEFCFG_PORT_CONN      uint32 = 0x3 << 30
	AC_DEFCFG_ASSOC_SHIFT           = 4
	AC_DEFCFG_COLOR_SHIFT           = 12
	AC_DEFCFG_DEVICE_SHIFT          = 20
	AC_DEFCFG_LOCATION_SHIFT        = 24
	AC_DEFCFG_PORT_CONN_SHIFT       = 30

	AC_JACK_PORT_COMPLEX uint32 = 0
	AC_JACK_PORT_NONE    uint32 = 1
	AC_JACK_PORT_FIXED   uint32 = 2
	AC_JACK_PORT_BOTH    uint32 = 3
)

// Connection list length.
const (
	AC_CLIST_LENGTH uint32 = 0x7f
	AC_CLIST_LONG   uint32 = 1 << 7
)

// Supported PCM sample sizes reported by AC_PAR_PCM.
const (
	AC_SUPPCM_BITS_8  uint32 = 1 << 16
	AC_SUPPCM_BITS_16 uint32 = 1 << 17
	AC_SUPPCM_BITS_20 uint32 = 1 << 18
	AC_SUPPCM_BITS_24 uint32 = 1 << 19
	AC_SUPPCM_BITS_32 uint32 = 1 << 20
	AC_SUPPCM_RATES   uint32 = 0xfff
)

// Power states.
const (
	AC_PWRST_D0 uint32 = 0x00
	AC_PWRST_D3 uint32 = 0x03
)
