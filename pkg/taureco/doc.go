/*
Package taureco reconstructs calorimeter tau candidates, one event at a time.

# Overview

For every event a Producer:

 1. resolves the reference vertex: the first vertex of the configured
    upstream collection, or a synthetic vertex smeared around the origin
    when that collection is empty;
 2. walks the tag infos of the configured input collection in order and
    rejects those whose jet pt does not strictly exceed the threshold;
 3. hands each accepted tag info and the vertex to a Builder, keeping the
    returned candidates in input order;
 4. returns two collections: the candidates and the detector ids the
    builder selected while building them.

Both collections are always present, possibly empty. An event either
produces both or fails with an error and produces nothing.

# Basic Usage

	setup := taureco.NewSetup().
	    Put(taureco.MagneticFieldRecord, taureco.UniformField{Bz: 3.8})
	setup.Put(taureco.TrackBuilderRecord,
	    taureco.NewHelixTrackBuilder(taureco.UniformField{Bz: 3.8}))

	deps, err := taureco.ResolveDependencies(setup)
	if err != nil {
	    log.Fatal(err)
	}
	b, err := builder.New("calo", config.New(nil), deps)
	if err != nil {
	    log.Fatal(err)
	}

	p, err := taureco.NewProducer(taureco.DefaultSettings(), b,
	    taureco.WithLogger(slog.Default()))
	if err != nil {
	    log.Fatal(err)
	}
	products, err := p.ProcessEvent(ctx, event)

# Missing dependencies

Upstream products are looked up by label in Event.TagInfos and
Event.Vertices. A label that is absent is a MissingDependencyError; a label
mapped to an empty slice is a normal event. Setup records are resolved once,
before any event, by ResolveDependencies.

	var missing *taureco.MissingDependencyError
	if errors.As(err, &missing) {
	    log.Printf("cannot process: %s %s", missing.Dependency, missing.Label)
	}

# Synthetic vertices

The synthetic vertex has covariance diag(σx², σy², σz²) and chi2, ndof and
track multiplicity equal to SyntheticQuality. Sampling uses the NormalSource
given with WithRandSource, or the process-wide generator.

# Builders

A Builder returns the detector ids it consumed together with each candidate.
Builders that accumulate ids internally can be wrapped with Accumulated,
which drains them after every call. See package builder for the provided
variants.

# Thread Safety

  - Producer serializes ProcessEvent calls; its Builder is never called
    concurrently.
  - Runner gives each worker its own Producer.
  - Setup is safe for concurrent use.
*/
package taureco
