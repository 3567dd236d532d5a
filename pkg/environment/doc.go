// Package environment turns obfuscated game jars into remapped source and
// class artifacts.
//
// An Environment downloads the backend's configuration and mapping archives,
// runs the pipeline configured by them for every side, post-processes each
// side's output through a text transform chain into a sources jar, recompiles
// it and installs both jars into the local artifact repository under the
// net.minecraft group.
//
// Two backends exist: mcp (sides client, server and joined, SRG names remapped
// from CSV tables) and yarn (sides client and server, sources already named,
// optional export of clean and modified source trees).
package environment
