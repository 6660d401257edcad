package idgen

import (
	"fmt"
	"sync"
	"time"
)

// 雪花算法生成全局唯一 ID
// 41位时间戳 + 10位机器ID + 12位序列号

const (
	epoch         = int64(1700000000000) // 起始时间戳 (毫秒)
	machineIDBits = uint(10)
	sequenceBits  = uint(12)
	maxMachineID  = int64(-1) ^ (int64(-1) << machineIDBits)
	maxSequence   = int64(-1) ^ (int64(-1) << sequenceBits)
	timeShift     = machineIDBits + sequenceBits
	machineShift  = sequenceBits
)

type Snowflake struct {
	mu        sync.Mutex
	machineID int64
	sequence  int64
	lastTime  int64
}

var defaultGenerator *Snowflake

// Init 初始化默认生成器
func Init(machineID int64) error {
	if machineID < 0 || machineID > maxMachineID {
		return fmt.Errorf("机器 ID 超出范围: %d", machineID)
	}
	defaultGenerator = &Snowflake{machineID: machineID}
	return nil
}

// NextID 生成下一个 ID
func NextID() int64 {
	return defaultGenerator.Generate()
}

func (s *Snowflake) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == s.lastTime {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// 当前毫秒序列号用完，等下一毫秒
			for now <= s.lastTime {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}

	s.lastTime = now

	return ((now - epoch) << timeShift) | (s.machineID << machineShift) | s.sequence
}

// GeneratePurchaseNo 生成充值单号
// 格式: TPU + 时间戳 + 雪花ID后8位
func GeneratePurchaseNo() string {
	id := NextID()
	return fmt.Sprintf("TPU%d%08d", time.Now().Unix(), id%100000000)
}

// GenerateTransactionNo 生成消费流水号
// 格式: TTX + 时间戳 + 雪花ID后8位
func GenerateTransactionNo() string {
	id := NextID()
	return fmt.Sprintf("TTX%d%08d", time.Now().Unix(), id%100000000)
}
