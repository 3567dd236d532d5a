// Package config handles configuration management for deobf.
//
// Two kinds of configuration exist:
//
//   - Settings: how the tool itself behaves (cache location, local and remote
//     repositories, offline mode, java binaries). Layered with koanf from the
//     embedded defaults, the user settings file, ./deobf.toml and DEOBF_*
//     environment variables, in that order.
//   - Descriptor: one deobfuscation target (backend, config and mappings
//     downloads, client/server artifacts), decoded strictly from a TOML file.
//
// Environment variables use a double underscore for nesting:
// DEOBF_JAVA__BINARY sets java.binary, DEOBF_OFFLINE sets offline.
package config
