// Package store 提供 core.Store 的实现：MemoryStore（单进程）与 RedisStore（多副本共享缓存）。
// 接口定义在 core 包，调用方只依赖 core.Store。
package store
