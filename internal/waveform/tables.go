// Package waveform holds the constant lookup data used by the effects:
// the perceptual correction curve and the periodic brightness curve.
package waveform

// Gamma maps a linear 0-255 level to a gamma 2.2 corrected output level.
var Gamma = [256]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 6, 6, 6,
	6, 7, 7, 7, 8, 8, 8, 9, 9, 9, 10, 10, 11, 11, 11, 12,
	12, 13, 13, 13, 14, 14, 15, 15, 16, 16, 17, 17, 18, 18, 19, 19,
	20, 20, 21, 22, 22, 23, 23, 24, 25, 25, 26, 26, 27, 28, 28, 29,
	30, 30, 31, 32, 33, 33, 34, 35, 35, 36, 37, 38, 39, 39, 40, 41,
	42, 43, 43, 44, 45, 46, 47, 48, 49, 49, 50, 51, 52, 53, 54, 55,
	56, 57, 58, 59, 60, 61, 62, 63, 64, 65, 66, 67, 68, 69, 70, 71,
	73, 74, 75, 76, 77, 78, 79, 81, 82, 83, 84, 85, 87, 88, 89, 90,
	91, 93, 94, 95, 97, 98, 99, 100, 102, 103, 105, 106, 107, 109, 110, 111,
	113, 114, 116, 117, 119, 120, 121, 123, 124, 126, 127, 129, 130, 132, 133, 135,
	137, 138, 140, 141, 143, 145, 146, 148, 149, 151, 153, 154, 156, 158, 159, 161,
	163, 165, 166, 168, 170, 172, 173, 175, 177, 179, 181, 182, 184, 186, 188, 190,
	192, 194, 196, 197, 199, 201, 203, 205, 207, 209, 211, 213, 215, 217, 219, 221,
	223, 225, 227, 229, 231, 234, 236, 238, 240, 242, 244, 246, 248, 251, 253, 255,
}

// Sine is one full period of a sine curve sampled at SineLength points,
// offset so the curve spans 0-255 starting at the midpoint.
var Sine = [SineLength]uint8{
	128, 136, 143, 151, 159, 167, 174, 182,
	189, 196, 202, 209, 215, 220, 226, 231,
	235, 239, 243, 246, 249, 251, 253, 254,
	255, 255, 255, 254, 253, 251, 249, 246,
	243, 239, 235, 231, 226, 220, 215, 209,
	202, 196, 189, 182, 174, 167, 159, 151,
	143, 136, 128, 119, 112, 104, 96, 88,
	81, 73, 66, 59, 53, 46, 40, 35,
	29, 24, 20, 16, 12, 9, 6, 4,
	2, 1, 0, 0, 0, 1, 2, 4,
	6, 9, 12, 16, 20, 24, 29, 35,
	40, 46, 53, 59, 66, 73, 81, 88,
	96, 104, 112, 119,
}

const (
	// SineLength is the number of points in one period of Sine.
	SineLength = 100

	// PulseStart is the Sine index a heartbeat pulse starts from (the trough).
	PulseStart = 76
	// PulseEnd is the index that ends a pulse; reaching it counts one beat.
	PulseEnd = 74
	// PulseLength is the wrap length used while walking a pulse.
	PulseLength = 99
)

// Correct returns the gamma corrected output for a linear level.
func Correct(level uint8) uint8 {
	return Gamma[level]
}
