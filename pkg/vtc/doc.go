// Package vtc represents, parses, formats and does arithmetic on SMPTE video
// timecode.
//
// A Timecode stores the exact rational number of seconds since zero together
// with the Framerate used to present it. Every other view (the HH:MM:SS:FF
// string, the frame count, decimal seconds, runtime, feet+frames and Premiere
// Pro ticks) is computed from those two values, so conversions never drift.
//
// NTSC rates play at 1000/1001 of their nominal speed but count timecode at the
// nominal whole-number rate. Drop-frame rates (29.97 and 59.94 DF) also skip
// frame numbers at the top of every minute not divisible by ten so the
// displayed timecode tracks wall-clock time.
//
//	tc, err := vtc.Parse("01:00:00;00", vtc.F29_97_DF)
//	if err != nil {
//		return err
//	}
//	fmt.Println(tc.Frames())    // 107892
//	fmt.Println(tc.Runtime(vtc.DefaultRuntimePrecision)) // 00:59:59.9964
//
// All values are immutable and safe for concurrent use.
package vtc
