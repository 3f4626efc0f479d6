/*
Package service implements ports.PromptService in process, from a Catalog and a Scorer.

It is the logic behind the stub HTTP server and the offline mode of the game.
The variation of each prompt is picked at random; a fixed seed makes the picks
reproducible.
*/
package service
