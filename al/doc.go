// Package al implements an active-learning acquisition loop for image
// classifiers: fine-tune on a growing labeled subset, score the unlabeled
// pool with an acquisition method, and commit the top-scoring unseen
// examples each round.
//
// # Reading Guide
//
// Start with these three files to understand the loop kernel:
//   - controller.go: the round loop (fine-tune, evaluate, score, select, grow)
//   - finetune.go: gradient-step loop with periodic evaluation and early stopping
//   - select.go: top-k acquisition over masked scores with an ignore set
//
// # Architecture
//
// The package computes only on flat aligned slices (ids, outputs, labels,
// masks). Everything that produces those slices is an external collaborator
// behind a small function type or interface declared in stream.go:
//   - DatasetStream / DataSource: finite batch streams per split
//   - ApplyFn: forward pass returning logits and pre-logit features
//   - UpdateFn: one gradient step, functional (never mutates its input)
//   - EvalFn: masked top-1 correctness counts for one batch
//   - MetricSink: fire-and-forget scalar/table diagnostics
//
// Batch padding is carried as a boolean validity mask and suppressed with a
// -Inf score sentinel, never by slicing, so array shapes stay uniform.
//
// # Determinism
//
// All randomness flows from a PartitionedRNG (rng.go) keyed by the master
// seed. The initial uniform draw and each round's uniform scores use their
// own derived streams, so reruns with the same seed reproduce the same
// acquisition trajectory.
package al
