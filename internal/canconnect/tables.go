package canconnect

// Device names a board whose crosspoint source can be parsed. Verilog is
// relative to the input folder. An empty path means the board has no
// parseable crosspoint.
type Device struct {
	ID      string `yaml:"id" validate:"required,startswith=DEVICE_ID_"`
	Verilog string `yaml:"verilog"`
}

// DefaultDevices maps --device names to boards.
var DefaultDevices = map[string]Device{
	"corvid":      {"DEVICE_ID_CORVID1", "corvid/fpga/units/vp/verilog/crosspoint_c.v"},
	"corvid22":    {"DEVICE_ID_CORVID22", "corvid22/fpga/units/vp/verilog/crosspoint_c22.v"},
	"corvid24":    {"DEVICE_ID_CORVID24", ""},
	"corvid3g":    {"DEVICE_ID_CORVID3G", ""},
	"corvid44":    {"DEVICE_ID_CORVID44", "DAX/FPGA/source/vp/xpt_c44.v"},
	"corvid88":    {"DEVICE_ID_CORVID88", "DAX/FPGA/source/vp/xpt_dax.v"},
	"corvidhbr":   {"DEVICE_ID_CORVIDHBR", ""},
	"corvidhevc":  {"DEVICE_ID_CORVIDHEVC", ""},
	"io4k":        {"DEVICE_ID_IO4K", "IO-XT-4K/source/vp/xpt_io_xt_4k.v"},
	"io4kufc":     {"DEVICE_ID_IO4KUFC", "IO-XT-4K/source/vp_ufc/xpt_io_xt_4k_ufc.v"},
	"ioexpress":   {"DEVICE_ID_IOEXPRESS", "chekov/fpga/units/vp/verilog/crosspoint_c.v"},
	"ioxt":        {"DEVICE_ID_IOXT", "IO_Thunderbolt/fpga/units/verilog/crosspoint.v"},
	"kona3g":      {"DEVICE_ID_KONA3G", "KONA_3G/fpga/units/vp/verilog/crosspoint_c22.v"},
	"kona3gquad":  {"DEVICE_ID_KONA3GQUAD", ""},
	"kona4":       {"DEVICE_ID_KONA4", "KONA4/source/vp/xpt_kona_4.v"},
	"kona4ufc":    {"DEVICE_ID_KONA4UFC", "KONA4/source/vp_ufc/xpt_kona_4_ufc.v"},
	"konalheplus": {"DEVICE_ID_KONALHEPLUS", "LHE_PLUS/fpga/units_new/vp/verilog/crosspoint.v"},
	"konalhi":     {"DEVICE_ID_KONALHI", ""},
	"ttap":        {"DEVICE_ID_TTAP", ""},
}

// DefaultInputXpts maps Verilog input-select names to NTV2 input crosspoints.
var DefaultInputXpts = map[string]string{
	"avid_in_sel":  "NTV2_XptAnalogOutInput",
	"out1a_in_sel": "NTV2_XptSDIOut1Input",
	"out1b_in_sel": "NTV2_XptSDIOut1InputDS2",
	"out2a_in_sel": "NTV2_XptSDIOut2Input",
	"out2b_in_sel": "NTV2_XptSDIOut2InputDS2",
	"out3a_in_sel": "NTV2_XptSDIOut3Input",
	"out3b_in_sel": "NTV2_XptSDIOut3InputDS2",
	"out4a_in_sel": "NTV2_XptSDIOut4Input",
	"out4b_in_sel": "NTV2_XptSDIOut4InputDS2",
	"out5a_in_sel": "NTV2_XptSDIOut5Input",
	"out5b_in_sel": "NTV2_XptSDIOut5InputDS2",
	"out6a_in_sel": "NTV2_XptSDIOut6Input",
	"out6b_in_sel": "NTV2_XptSDIOut6InputDS2",
	"out7a_in_sel": "NTV2_XptSDIOut7Input",
	"out7b_in_sel": "NTV2_XptSDIOut7InputDS2",
	"out8a_in_sel": "NTV2_XptSDIOut8Input",
	"out8b_in_sel": "NTV2_XptSDIOut8InputDS2",

	"fb1_in_sel":  "NTV2_XptFrameBuffer1Input",
	"fb1b_in_sel": "NTV2_XptFrameBuffer1BInput",
	"fb2_in_sel":  "NTV2_XptFrameBuffer2Input",
	"fb2b_in_sel": "NTV2_XptFrameBuffer2BInput",
	"fb3_in_sel":  "NTV2_XptFrameBuffer3Input",
	"fb3b_in_sel": "NTV2_XptFrameBuffer3BInput",
	"fb4_in_sel":  "NTV2_XptFrameBuffer4Input",
	"fb4b_in_sel": "NTV2_XptFrameBuffer4BInput",
	"fb5_in_sel":  "NTV2_XptFrameBuffer5Input",
	"fb5b_in_sel": "NTV2_XptFrameBuffer5BInput",
	"fb6_in_sel":  "NTV2_XptFrameBuffer6Input",
	"fb6b_in_sel": "NTV2_XptFrameBuffer6BInput",
	"fb7_in_sel":  "NTV2_XptFrameBuffer7Input",
	"fb7b_in_sel": "NTV2_XptFrameBuffer7BInput",
	"fb8_in_sel":  "NTV2_XptFrameBuffer8Input",
	"fb8b_in_sel": "NTV2_XptFrameBuffer8BInput",

	"csc1_vin_sel": "NTV2_XptCSC1VidInput",
	"csc1_kin_sel": "NTV2_XptCSC1KeyInput",
	"csc2_vin_sel": "NTV2_XptCSC2VidInput",
	"csc2_kin_sel": "NTV2_XptCSC2KeyInput",
	"csc3_vin_sel": "NTV2_XptCSC3VidInput",
	"csc3_kin_sel": "NTV2_XptCSC3KeyInput",
	"csc4_vin_sel": "NTV2_XptCSC4VidInput",
	"csc4_kin_sel": "NTV2_XptCSC4KeyInput",
	"csc5_vin_sel": "NTV2_XptCSC5VidInput",
	"csc5_kin_sel": "NTV2_XptCSC5KeyInput",
	"csc6_vin_sel": "NTV2_XptCSC6VidInput",
	"csc6_kin_sel": "NTV2_XptCSC6KeyInput",
	"csc7_vin_sel": "NTV2_XptCSC7VidInput",
	"csc7_kin_sel": "NTV2_XptCSC7KeyInput",
	"csc8_vin_sel": "NTV2_XptCSC8VidInput",
	"csc8_kin_sel": "NTV2_XptCSC8KeyInput",

	"lut1_in_sel": "NTV2_XptLUT1Input",
	"lut2_in_sel": "NTV2_XptLUT2Input",
	"lut3_in_sel": "NTV2_XptLUT3Input",
	"lut4_in_sel": "NTV2_XptLUT4Input",
	"lut5_in_sel": "NTV2_XptLUT5Input",
	"lut6_in_sel": "NTV2_XptLUT6Input",
	"lut7_in_sel": "NTV2_XptLUT7Input",
	"lut8_in_sel": "NTV2_XptLUT8Input",

	"dlo1_in_sel": "NTV2_XptDualLinkOut1Input",
	"dlo2_in_sel": "NTV2_XptDualLinkOut2Input",
	"dlo3_in_sel": "NTV2_XptDualLinkOut3Input",
	"dlo4_in_sel": "NTV2_XptDualLinkOut4Input",
	"dlo5_in_sel": "NTV2_XptDualLinkOut5Input",
	"dlo6_in_sel": "NTV2_XptDualLinkOut6Input",
	"dlo7_in_sel": "NTV2_XptDualLinkOut7Input",
	"dlo8_in_sel": "NTV2_XptDualLinkOut8Input",

	"mix1_fgv_sel": "NTV2_XptMixer1FGVidInput",
	"mix1_fgk_sel": "NTV2_XptMixer1FGKeyInput",
	"mix1_bgv_sel": "NTV2_XptMixer1BGVidInput",
	"mix1_bgk_sel": "NTV2_XptMixer1BGKeyInput",
	"mix2_fgv_sel": "NTV2_XptMixer2FGVidInput",
	"mix2_fgk_sel": "NTV2_XptMixer2FGKeyInput",
	"mix2_bgv_sel": "NTV2_XptMixer2BGVidInput",
	"mix2_bgk_sel": "NTV2_XptMixer2BGKeyInput",
	"mix3_fgv_sel": "NTV2_XptMixer3FGVidInput",
	"mix3_fgk_sel": "NTV2_XptMixer3FGKeyInput",
	"mix3_bgv_sel": "NTV2_XptMixer3BGVidInput",
	"mix3_bgk_sel": "NTV2_XptMixer3BGKeyInput",
	"mix4_fgv_sel": "NTV2_XptMixer4FGVidInput",
	"mix4_fgk_sel": "NTV2_XptMixer4FGKeyInput",
	"mix4_bgv_sel": "NTV2_XptMixer4BGVidInput",
	"mix4_bgk_sel": "NTV2_XptMixer4BGKeyInput",

	"dual_link_receiver_1_stream_sel1": "NTV2_XptDualLinkIn1Input",
	"dual_link_receiver_1_stream_sel2": "NTV2_XptDualLinkIn1DSInput",
	"dual_link_receiver_2_stream_sel1": "NTV2_XptDualLinkIn2Input",
	"dual_link_receiver_2_stream_sel2": "NTV2_XptDualLinkIn2DSInput",
	"dual_link_receiver_3_stream_sel1": "NTV2_XptDualLinkIn3Input",
	"dual_link_receiver_3_stream_sel2": "NTV2_XptDualLinkIn3DSInput",
	"dual_link_receiver_4_stream_sel1": "NTV2_XptDualLinkIn4Input",
	"dual_link_receiver_4_stream_sel2": "NTV2_XptDualLinkIn4DSInput",
	"dual_link_receiver_5_stream_sel1": "NTV2_XptDualLinkIn5Input",
	"dual_link_receiver_5_stream_sel2": "NTV2_XptDualLinkIn5DSInput",
	"dual_link_receiver_6_stream_sel1": "NTV2_XptDualLinkIn6Input",
	"dual_link_receiver_6_stream_sel2": "NTV2_XptDualLinkIn6DSInput",
	"dual_link_receiver_7_stream_sel1": "NTV2_XptDualLinkIn7Input",
	"dual_link_receiver_7_stream_sel2": "NTV2_XptDualLinkIn7DSInput",
	"dual_link_receiver_8_stream_sel1": "NTV2_XptDualLinkIn8Input",
	"dual_link_receiver_8_stream_sel2": "NTV2_XptDualLinkIn8DSInput",

	"mux1a_in_sel": "NTV2_Xpt425Mux1AInput",
	"mux1b_in_sel": "NTV2_Xpt425Mux1BInput",
	"mux2a_in_sel": "NTV2_Xpt425Mux2AInput",
	"mux2b_in_sel": "NTV2_Xpt425Mux2BInput",
	"mux3a_in_sel": "NTV2_Xpt425Mux3AInput",
	"mux3b_in_sel": "NTV2_Xpt425Mux3BInput",
	"mux4a_in_sel": "NTV2_Xpt425Mux4AInput",
	"mux4b_in_sel": "NTV2_Xpt425Mux4BInput",
	"mux5a_in_sel": "NTV2_Xpt425Mux5AInput",
	"mux5b_in_sel": "NTV2_Xpt425Mux5BInput",
	"mux6a_in_sel": "NTV2_Xpt425Mux6AInput",
	"mux6b_in_sel": "NTV2_Xpt425Mux6BInput",
	"mux7a_in_sel": "NTV2_Xpt425Mux7AInput",
	"mux7b_in_sel": "NTV2_Xpt425Mux7BInput",
	"mux8a_in_sel": "NTV2_Xpt425Mux8AInput",
	"mux8b_in_sel": "NTV2_Xpt425Mux8BInput",
}
