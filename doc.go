// Package timemap renders the frames of a timeline clip whose playback
// speed and direction are driven by a time curve.
//
// A clip maps each output frame number through a [keyframe.TimeCurve] to a
// source frame, fetches that frame from a [media.Reader] and resynthesizes
// its audio so that the output frame carries exactly the samples it owes,
// in the right order, whether the clip plays slower, faster or backwards.
//
// # Quick Start
//
//	cfg := timemap.DefaultConfig()
//	cfg.Time = keyframe.MustCurve(
//	    keyframe.Point{X: 1, Y: 1},
//	    keyframe.Point{X: 300, Y: 100}, // one third speed
//	)
//	clip, err := timemap.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	clip.SetReader(src)
//
//	frame, err := clip.GetFrame(ctx, 42)
//
// # Synthesis Paths
//
// Every request is classified by [Clip.Plan]:
//
//   - [PathPassthrough]: the time curve has at most one point; the source
//     frame is returned as is.
//   - [PathSlowMotion]: several output frames share one source frame. The
//     source audio is stretched once per repeat group, cached, and each
//     output frame reads its own window of the stretched audio.
//   - [PathSpeedChange]: the curve skips source frames. The skipped frames'
//     audio is concatenated and compressed into one frame's duration.
//   - [PathDirect]: unit steps and oversized jumps. The source audio is
//     copied and reversed. [Config].ReverseOnlyBackwards keeps forward
//     frames in order.
//
// # Sample Accounting
//
// Sample counts per frame come from [media.SamplesForFrame], which rounds
// the running total rather than each frame. Frame rates such as 30000/1001
// therefore never drift against the audio clock.
//
// # Concurrency
//
// The only state shared between calls is the slow-motion cache. Entries are
// keyed by repeat group and guarded by a mutex, so [Clip.GetFrame] may be
// called from several goroutines and in any order. See [OrderPolicy].
package timemap
