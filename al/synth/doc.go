// Package synth provides a self-contained synthetic classification task for
// the acquisition loop: Gaussian class clusters as the data source and a
// linear softmax classifier as the model. It implements every collaborator
// contract in package al, which is what the CLI runs and what end-to-end
// tests drive.
//
// Everything is deterministic given the task seed: dataset generation,
// shuffling, and the gradient updates.
package synth
