// Package process launches external programs: java for tool steps and javac
// for recompilation. Everything goes through the Launcher interface so tests
// can substitute a fake.
package process
