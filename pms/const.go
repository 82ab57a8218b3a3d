package pms

const (
	StartByte1 = 0x42
	StartByte2 = 0x4D
	FrameLen   = 32
	ChecksumAt = FrameLen - 2

	// Default UART settings of the PMS sensors family.
	BaudRate = 9600
)

// Command frames are 7 bytes long, the last one being the sum of the previous ones.
var (
	CommandPassive = Command{StartByte1, StartByte2, 0xE1, 0x00, 0x00, 0x01, 0x70}
	CommandActive  = Command{StartByte1, StartByte2, 0xE1, 0x00, 0x01, 0x01, 0x71}
	CommandRead    = Command{StartByte1, StartByte2, 0xE2, 0x00, 0x00, 0x01, 0x71}
	CommandSleep   = Command{StartByte1, StartByte2, 0xE4, 0x00, 0x00, 0x01, 0x73}
	CommandWake    = Command{StartByte1, StartByte2, 0xE4, 0x00, 0x01, 0x01, 0x74}
)

// USB-UART bridges commonly found between a host and a PMS sensor (VID, PID).
var bridges = [][2]string{
	{"10c4", "ea60"}, // Silicon Labs CP210x
	{"1a86", "7523"}, // QinHeng CH340
	{"0403", "6001"}, // FTDI FT232R
	{"067b", "2303"}, // Prolific PL2303
}
