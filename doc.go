// Package lottie plays Lottie/Bodymovin vector animations inside an
// Ebitengine game.
//
// An Animation is the parsed, immutable document. A Player advances a
// playhead over it (speed, direction, loop, segments) without touching any
// pixels. A Surface rasterizes a frame onto an off-screen canvas. A Sprite
// ties the three together behind a texture: call Update once per game tick
// and Draw once per frame, exactly like any other Ebitengine drawable.
//
//	anim, err := lottie.LoadFile("rocket.json")
//	if err != nil { ... }
//	sprite, err := lottie.NewSprite(anim, &lottie.SpriteOptions{Autoplay: true})
//
// One Animation can feed any number of sprites; parsing happens once.
// Everything in this package expects the single game-loop goroutine.
package lottie
