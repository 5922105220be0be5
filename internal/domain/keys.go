package domain

// KeyPrefix is the namespace for every key newsline writes to a shared store.
const KeyPrefix = "newsline:"
